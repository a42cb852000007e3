package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/dinar/internal/common"
	"github.com/Veraticus/dinar/internal/config"
	"github.com/Veraticus/dinar/internal/model"
	"github.com/Veraticus/dinar/internal/service"
	"github.com/Veraticus/dinar/internal/storage"
	"github.com/Veraticus/dinar/internal/testutil"
)

// setupTestDB points the global config at a fresh database file.
func setupTestDB(t *testing.T) string {
	t.Helper()
	viper.Reset()
	config.SetDefaults(viper.GetViper())
	dbPath := filepath.Join(t.TempDir(), "dinar.db")
	viper.Set(config.KeyDatabasePath, dbPath)
	t.Cleanup(viper.Reset)
	return dbPath
}

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func openTestStore(t *testing.T, dbPath string) service.Storage {
	t.Helper()
	store, err := storage.NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRootCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}

	for _, want := range []string{"init", "categories", "tx", "report", "balance", "import", "backup", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestInitCmd(t *testing.T) {
	dbPath := setupTestDB(t)

	out, err := execute(t, initCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "Database ready")

	// Second run is harmless.
	_, err = execute(t, initCmd())
	require.NoError(t, err)

	store := openTestStore(t, dbPath)
	categories, err := store.GetCategories(context.Background(), nil)
	require.NoError(t, err)
	assert.Len(t, categories, len(model.DefaultCategories))
}

func TestCategoryLifecycle(t *testing.T) {
	setupTestDB(t)

	out, err := execute(t, categoriesCmd(), "add", "Pets", "--type", "expense", "--icon", "paw")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")

	_, err = execute(t, categoriesCmd(), "add", "Pets", "--type", "expense")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "already exists")

	_, err = execute(t, categoriesCmd(), "add", "Lottery", "--type", "windfall")
	require.Error(t, err)

	out, err = execute(t, categoriesCmd(), "list", "--type", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "Pets")
	assert.NotContains(t, out, "Salary")
}

func TestDeleteCategoryInUse(t *testing.T) {
	dbPath := setupTestDB(t)

	_, err := execute(t, transactionsCmd(), "add", "30", "--category", "Shopping", "--date", "2024-01-10")
	require.NoError(t, err)

	store := openTestStore(t, dbPath)
	shopping, err := store.GetCategoryByName(context.Background(), "Shopping")
	require.NoError(t, err)

	_, err = execute(t, categoriesCmd(), "delete", formatID(shopping.ID))
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "still has transactions")
	assert.True(t, storage.IsForeignKeyViolation(err))
}

func TestTransactionsAndBalance(t *testing.T) {
	setupTestDB(t)

	_, err := execute(t, transactionsCmd(), "add", "100", "--category", "Salary", "--date", "2024-01-05", "--description", "January pay")
	require.NoError(t, err)
	_, err = execute(t, transactionsCmd(), "add", "30", "--category", "Food & Dining", "--date", "2024-01-10", "--description", "Groceries")
	require.NoError(t, err)

	out, err := execute(t, reportCmd(), "balance")
	require.NoError(t, err)
	assert.Contains(t, out, "100.00")
	assert.Contains(t, out, "30.00")
	assert.Contains(t, out, "70.00")

	out, err = execute(t, reportCmd(), "balance", "--up-to", "2024-01-07")
	require.NoError(t, err)
	assert.Contains(t, out, "as of 2024-01-07")
	assert.NotContains(t, out, "70.00")

	out, err = execute(t, transactionsCmd(), "range", "--from", "2024-01-01", "--to", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.Contains(t, out, "January pay")

	out, err = execute(t, transactionsCmd(), "search", "groc")
	require.NoError(t, err)
	assert.Contains(t, out, "Groceries")
	assert.NotContains(t, out, "January pay")

	out, err = execute(t, reportCmd(), "summary", "--from", "2024-01-01", "--to", "2024-01-31")
	require.NoError(t, err)
	assert.Contains(t, out, "Count:    2")
}

func TestTransactionUpdateRejectsTypeChange(t *testing.T) {
	setupTestDB(t)

	out, err := execute(t, transactionsCmd(), "add", "30", "--category", "Shopping", "--date", "2024-01-10")
	require.NoError(t, err)
	assert.Contains(t, out, "id 1")

	_, err = execute(t, transactionsCmd(), "update", "1", "--amount", "40", "--category", "Salary")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "is income")

	_, err = execute(t, transactionsCmd(), "update", "1", "--amount", "40", "--category", "Healthcare", "--date", "2024-01-11")
	require.NoError(t, err)
}

func TestRangeRequiresBothDates(t *testing.T) {
	setupTestDB(t)

	_, err := execute(t, transactionsCmd(), "range", "--from", "2024-01-01")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "--from and --to")
}

func TestDayAndByCategory(t *testing.T) {
	setupTestDB(t)
	db := testutil.SetupTestDB(t)
	viper.Set(config.KeyDatabasePath, db.Path)

	db.AddTransaction("Salary", "100", "2024-01-05", "January pay")
	db.AddTransaction("Shopping", "20", "2024-01-05", "Shoes")
	db.AddTransaction("Shopping", "15", "2024-01-06", "Socks")

	out, err := execute(t, transactionsCmd(), "day", "2024-01-05")
	require.NoError(t, err)
	assert.Contains(t, out, "January pay")
	assert.Contains(t, out, "Shoes")
	assert.NotContains(t, out, "Socks")

	out, err = execute(t, transactionsCmd(), "by-category", "Shopping")
	require.NoError(t, err)
	assert.Contains(t, out, "Shoes")
	assert.Contains(t, out, "Socks")
	assert.NotContains(t, out, "January pay")

	out, err = execute(t, reportCmd(), "categories", "--from", "2024-01-01", "--to", "2024-01-31", "--type", "expense")
	require.NoError(t, err)
	assert.Contains(t, out, "35.00")
	assert.NotContains(t, out, "Salary")

	_, err = execute(t, transactionsCmd(), "delete", "3")
	require.NoError(t, err)
	assert.Equal(t, 2, db.CountTransactions())
}

func TestImportCmd(t *testing.T) {
	dbPath := setupTestDB(t)

	file := filepath.Join(t.TempDir(), "statement.ofx")
	require.NoError(t, os.WriteFile(file, []byte(sampleOFX), 0o600))

	out, err := execute(t, importCmd(), file, file)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 3 transactions")

	store := openTestStore(t, dbPath)
	ctx := context.Background()

	totals, err := store.GetTotalBalance(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "1000.00", totals.TotalIncome.StringFixed(2))
	assert.Equal(t, "70.50", totals.TotalExpense.StringFixed(2))

	other, err := store.GetCategoryByName(ctx, "Other Expenses")
	require.NoError(t, err)
	txns, err := store.GetTransactionsByCategory(ctx, other.ID, nil, nil)
	require.NoError(t, err)
	assert.Len(t, txns, 2)
}

func TestImportDryRun(t *testing.T) {
	dbPath := setupTestDB(t)

	file := filepath.Join(t.TempDir(), "statement.ofx")
	require.NoError(t, os.WriteFile(file, []byte(sampleOFX), 0o600))

	out, err := execute(t, importCmd(), "--dry-run", file)
	require.NoError(t, err)
	assert.Contains(t, out, "3 transactions would be imported")

	_, statErr := os.Stat(dbPath)
	assert.True(t, os.IsNotExist(statErr), "dry run must not create the database")
}

func TestImportRejectsWrongCategoryType(t *testing.T) {
	setupTestDB(t)

	file := filepath.Join(t.TempDir(), "statement.ofx")
	require.NoError(t, os.WriteFile(file, []byte(sampleOFX), 0o600))

	_, err := execute(t, importCmd(), file, "--expense-category", "Salary")
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "need an expense category")
}

func TestBackupCmd(t *testing.T) {
	dbPath := setupTestDB(t)

	_, err := execute(t, transactionsCmd(), "add", "12.50", "--category", "Shopping", "--date", "2024-01-10")
	require.NoError(t, err)

	dest := filepath.Join(t.TempDir(), "copy.db")
	out, err := execute(t, backupCmd(), dest)
	require.NoError(t, err)
	assert.Contains(t, out, "Backed up 1 transactions")

	_, err = execute(t, backupCmd(), dest)
	require.Error(t, err)
	assert.Contains(t, common.UserMessage(err), "already exists")

	copyStore := openTestStore(t, dest)
	totals, err := copyStore.GetTotalBalance(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "12.50", totals.TotalExpense.StringFixed(2))
	assert.NotEqual(t, dbPath, dest)
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, versionCmd())
	require.NoError(t, err)
	assert.Contains(t, out, "dinar "+version)
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

const sampleOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-45.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>1000.00
<FITID>2024013101
<NAME>ACME PAYROLL
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`
