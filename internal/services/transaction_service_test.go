package services

import (
	"testing"
	"time"

	"kharcha/internal/files"
	"kharcha/internal/models"
	"kharcha/internal/pagination"
	"kharcha/internal/testutil"
)

func TestCreateTransaction(t *testing.T) {
	t.Run("valid_with_notes_and_files", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		input := TransactionInput{
			Name:   "Groceries",
			Type:   "Expense",
			Amount: 1500,
			Date:   time.Now(),
			Notes: []NoteInput{
				{Text: "weekly shop"},
				{Text: "receipt attached"},
			},
		}
		attachments := []*files.StoredFile{
			nil,
			{FileName: "abc.png", FileURL: "/uploads/abc.png"},
		}

		tx, err := svc.CreateTransaction(user.ID, input, attachments)
		testutil.AssertNoError(t, err)

		if tx.ID == 0 {
			t.Fatal("expected non-zero transaction ID")
		}
		if len(tx.Notes) != 2 {
			t.Fatalf("expected 2 notes, got %d", len(tx.Notes))
		}
		if tx.Notes[0].HasFile() {
			t.Error("first note should carry no file")
		}
		if tx.Notes[1].FileURL != "/uploads/abc.png" {
			t.Errorf("second note should carry the uploaded file, got %q", tx.Notes[1].FileURL)
		}
	})

	t.Run("defaults", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		tx, err := svc.CreateTransaction(user.ID, TransactionInput{Amount: 10}, nil)
		testutil.AssertNoError(t, err)

		if tx.Name != "Anonymous" {
			t.Errorf("expected default name Anonymous, got %s", tx.Name)
		}
		if tx.Type != "Investment" {
			t.Errorf("expected default type Investment, got %s", tx.Type)
		}
		if tx.Date.IsZero() {
			t.Error("expected date to default to now")
		}
	})
}

func TestUpdateTransaction(t *testing.T) {
	t.Run("preserves_existing_file_url", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		created, err := svc.CreateTransaction(user.ID, TransactionInput{
			Name:   "Dinner",
			Type:   "Expense",
			Amount: 80,
			Date:   time.Now(),
			Notes:  []NoteInput{{Text: "with receipt"}},
		}, []*files.StoredFile{{FileName: "old.png", FileURL: "/uploads/old.png"}})
		testutil.AssertNoError(t, err)

		// Client resubmits the note, carrying the fileUrl it received,
		// with no new file at that position.
		updated, err := svc.UpdateTransaction(user.ID, created.ID, TransactionInput{
			Name:   "Dinner out",
			Type:   "Expense",
			Amount: 95,
			Date:   created.Date,
			Notes: []NoteInput{{
				Text:     "with receipt, edited",
				FileName: "old.png",
				FileURL:  "/uploads/old.png",
			}},
		}, nil)
		testutil.AssertNoError(t, err)

		if updated.Amount != 95 {
			t.Errorf("expected updated amount 95, got %f", updated.Amount)
		}
		if len(updated.Notes) != 1 {
			t.Fatalf("expected 1 note, got %d", len(updated.Notes))
		}
		if updated.Notes[0].FileURL != "/uploads/old.png" {
			t.Errorf("expected fileUrl preserved, got %q", updated.Notes[0].FileURL)
		}
		if updated.Notes[0].FileName != "old.png" {
			t.Errorf("expected fileName preserved, got %q", updated.Notes[0].FileName)
		}
	})

	t.Run("new_file_wins_over_carried_url", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		created, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:   "Expense",
			Amount: 80,
			Notes:  []NoteInput{{Text: "n"}},
		}, []*files.StoredFile{{FileName: "old.png", FileURL: "/uploads/old.png"}})
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateTransaction(user.ID, created.ID, TransactionInput{
			Type:   "Expense",
			Amount: 80,
			Notes:  []NoteInput{{Text: "n", FileName: "old.png", FileURL: "/uploads/old.png"}},
		}, []*files.StoredFile{{FileName: "new.png", FileURL: "/uploads/new.png"}})
		testutil.AssertNoError(t, err)

		if updated.Notes[0].FileURL != "/uploads/new.png" {
			t.Errorf("expected new file to replace carried url, got %q", updated.Notes[0].FileURL)
		}
	})

	t.Run("replaces_notes_wholesale", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		created, err := svc.CreateTransaction(user.ID, TransactionInput{
			Type:   "Expense",
			Amount: 10,
			Notes:  []NoteInput{{Text: "a"}, {Text: "b"}, {Text: "c"}},
		}, nil)
		testutil.AssertNoError(t, err)

		updated, err := svc.UpdateTransaction(user.ID, created.ID, TransactionInput{
			Type:   "Expense",
			Amount: 10,
			Notes:  []NoteInput{{Text: "only"}},
		}, nil)
		testutil.AssertNoError(t, err)

		if len(updated.Notes) != 1 || updated.Notes[0].Text != "only" {
			t.Errorf("expected notes replaced wholesale, got %+v", updated.Notes)
		}

		var orphans int64
		db.Model(&models.Note{}).Where("transaction_id = ?", created.ID).Count(&orphans)
		if orphans != 1 {
			t.Errorf("expected 1 note row after replacement, got %d", orphans)
		}
	})

	t.Run("other_users_transaction_not_found", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		owner := testutil.CreateTestUser(t, db)
		intruder := testutil.CreateTestUser(t, db)

		created, err := svc.CreateTransaction(owner.ID, TransactionInput{Type: "Expense", Amount: 10}, nil)
		testutil.AssertNoError(t, err)

		_, err = svc.UpdateTransaction(intruder.ID, created.ID, TransactionInput{Type: "Expense", Amount: 99}, nil)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")
	})
}

func TestGetUserTransactions(t *testing.T) {
	t.Run("ordered_date_desc_with_filters", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		now := time.Now()
		testutil.CreateTestTransactionAt(t, db, user.ID, "Expense", 10, now.Add(-48*time.Hour))
		testutil.CreateTestTransactionAt(t, db, user.ID, "Expense", 20, now.Add(-24*time.Hour))
		testutil.CreateTestTransactionAt(t, db, user.ID, "Income", 30, now)

		page := pagination.PageRequest{Page: 1, PageSize: 10}
		resp, err := svc.GetUserTransactions(user.ID, page, TransactionFilter{})
		testutil.AssertNoError(t, err)

		if resp.TotalItems != 3 {
			t.Fatalf("expected 3 transactions, got %d", resp.TotalItems)
		}
		if !resp.Data[0].Date.After(resp.Data[1].Date) {
			t.Error("expected most recent transaction first")
		}

		expType := "Expense"
		filtered, err := svc.GetUserTransactions(user.ID, page, TransactionFilter{Type: &expType})
		testutil.AssertNoError(t, err)
		if filtered.TotalItems != 2 {
			t.Errorf("expected 2 expense transactions, got %d", filtered.TotalItems)
		}
	})
}

func TestDeleteTransactions(t *testing.T) {
	t.Run("partial_success", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)
		other := testutil.CreateTestUser(t, db)

		mine := testutil.CreateTestTransaction(t, db, user.ID, "Expense", 10)
		theirs := testutil.CreateTestTransaction(t, db, other.ID, "Expense", 20)

		results := svc.DeleteTransactions(user.ID, []uint{mine.ID, theirs.ID, 99999})

		if len(results) != 3 {
			t.Fatalf("expected 3 results, got %d", len(results))
		}
		if !results[0].Deleted {
			t.Error("expected own transaction to be deleted")
		}
		if results[1].Deleted || results[2].Deleted {
			t.Error("expected foreign and missing ids to fail individually")
		}

		// The valid delete must not be rolled back by the failures.
		_, err := svc.GetTransactionByID(user.ID, mine.ID)
		testutil.AssertAppError(t, err, "TRANSACTION_NOT_FOUND")

		_, err = svc.GetTransactionByID(other.ID, theirs.ID)
		testutil.AssertNoError(t, err)
	})
}

func TestGetLabeledTransactions(t *testing.T) {
	t.Run("inner_join_drops_unmatched_types", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestGlobalCategory(t, db, "Expense", "#FF0000")
		testutil.CreateTestTransaction(t, db, user.ID, "Expense", 100)
		testutil.CreateTestTransaction(t, db, user.ID, "Unlabeled", 50)

		labeled, err := svc.GetLabeledTransactions(user.ID)
		testutil.AssertNoError(t, err)

		if len(labeled) != 1 {
			t.Fatalf("expected 1 labeled transaction, got %d", len(labeled))
		}
		if labeled[0].Color != "#FF0000" {
			t.Errorf("expected color #FF0000, got %s", labeled[0].Color)
		}
	})

	t.Run("idempotent_for_unchanged_categories", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestGlobalCategory(t, db, "Expense", "#FF0000")
		now := time.Now()
		testutil.CreateTestTransactionAt(t, db, user.ID, "Expense", 100, now.Add(-time.Hour))
		testutil.CreateTestTransactionAt(t, db, user.ID, "Expense", 200, now)

		first, err := svc.GetLabeledTransactions(user.ID)
		testutil.AssertNoError(t, err)
		second, err := svc.GetLabeledTransactions(user.ID)
		testutil.AssertNoError(t, err)

		if len(first) != len(second) {
			t.Fatalf("expected identical result sets, got %d and %d", len(first), len(second))
		}
		for i := range first {
			if first[i].ID != second[i].ID || first[i].Color != second[i].Color {
				t.Errorf("result %d differs between runs", i)
			}
		}
		if first[0].Amount != 200 {
			t.Errorf("expected most recent transaction first, got amount %f", first[0].Amount)
		}
	})

	t.Run("user_category_shadows_global", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		defer testutil.TeardownTestDB(t, db)
		svc := NewTransactionService(db)
		user := testutil.CreateTestUser(t, db)

		testutil.CreateTestGlobalCategory(t, db, "Expense", "#000000")
		testutil.CreateTestCategory(t, db, user.ID, "Expense", "#FF0000")
		testutil.CreateTestTransaction(t, db, user.ID, "Expense", 10)

		labeled, err := svc.GetLabeledTransactions(user.ID)
		testutil.AssertNoError(t, err)

		if len(labeled) != 1 {
			t.Fatalf("expected 1 labeled transaction, got %d", len(labeled))
		}
		if labeled[0].Color != "#FF0000" {
			t.Errorf("expected user-owned category color to win, got %s", labeled[0].Color)
		}
	})
}
