package repository_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tokowa/commerce-agent/internal/repository"
)

func TestLabelRepoListAvailableScansAllRows(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewLabelRepo(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM labels")).
		WithArgs("tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "tenant_id", "name", "color"}).
			AddRow("lbl-1", "tenant-1", "vip", "#ffd700").
			AddRow("lbl-2", "tenant-1", "wholesale", ""))

	labels, err := repo.ListAvailable(context.Background(), "tenant-1")

	require.NoError(t, err)
	require.Len(t, labels, 2)
	assert.Equal(t, "vip", labels[0].Name)
	assert.Equal(t, "wholesale", labels[1].Name)
}

func TestLabelRepoApplyToConversationExecutesUpdate(t *testing.T) {
	db, mock := newSQLXMock(t)
	repo := repository.NewLabelRepo(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE customers")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.ApplyToConversation(context.Background(), "tenant-1", "conv-1", "vip")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
