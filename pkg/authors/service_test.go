package authors

import (
	"context"
	"testing"
	"time"

	"github.com/shishobooks/catalog/pkg/errcodes"
	"github.com/shishobooks/catalog/pkg/models"
	"github.com/shishobooks/catalog/pkg/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

func createBook(t *testing.T, db *bun.DB, authorID int, title string) *models.Book {
	t.Helper()
	book := &models.Book{
		Title:    title,
		AuthorID: authorID,
		Summary:  "Summary of " + title,
		ISBN:     "978" + title,
	}
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)
	return book
}

func TestService_CreateAndRetrieve(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	dob := time.Date(1775, time.December, 16, 0, 0, 0, 0, time.UTC)
	author := &models.Author{FirstName: "Jane", FamilyName: "Austen", DateOfBirth: &dob}
	require.NoError(t, svc.CreateAuthor(ctx, author))
	assert.NotZero(t, author.ID)
	assert.False(t, author.CreatedAt.IsZero())

	got, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	require.NoError(t, err)
	assert.Equal(t, "Austen", got.FamilyName)
	require.NotNil(t, got.DateOfBirth)
	assert.Equal(t, "1775-12-16", models.FormatISODate(got.DateOfBirth))
	assert.Nil(t, got.DateOfDeath)
}

func TestService_RetrieveMissing(t *testing.T) {
	t.Parallel()
	svc := NewService(testutils.NewDB(t))

	id := 42
	_, err := svc.RetrieveAuthor(context.Background(), RetrieveAuthorOptions{ID: &id})
	assert.ErrorIs(t, err, errcodes.NotFound("Author"))
}

func TestService_ListAuthorsSortedByFamilyName(t *testing.T) {
	t.Parallel()
	svc := NewService(testutils.NewDB(t))
	ctx := context.Background()

	for _, a := range []*models.Author{
		{FirstName: "Mary", FamilyName: "Shelley"},
		{FirstName: "Jane", FamilyName: "Austen"},
		{FirstName: "Charlotte", FamilyName: "Bronte"},
	} {
		require.NoError(t, svc.CreateAuthor(ctx, a))
	}

	authors, err := svc.ListAuthors(ctx)
	require.NoError(t, err)
	require.Len(t, authors, 3)
	assert.Equal(t, "Austen", authors[0].FamilyName)
	assert.Equal(t, "Bronte", authors[1].FamilyName)
	assert.Equal(t, "Shelley", authors[2].FamilyName)
}

func TestService_UpdateAuthor(t *testing.T) {
	t.Parallel()
	svc := NewService(testutils.NewDB(t))
	ctx := context.Background()

	author := &models.Author{FirstName: "Jane", FamilyName: "Austin"}
	require.NoError(t, svc.CreateAuthor(ctx, author))

	author.FamilyName = "Austen"
	require.NoError(t, svc.UpdateAuthor(ctx, author, UpdateAuthorOptions{Columns: []string{"family_name"}}))

	got, err := svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &author.ID})
	require.NoError(t, err)
	assert.Equal(t, "Austen", got.FamilyName)

	missing := &models.Author{ID: 999, FirstName: "No", FamilyName: "One"}
	err = svc.UpdateAuthor(ctx, missing, UpdateAuthorOptions{Columns: []string{"first_name"}})
	assert.ErrorIs(t, err, errcodes.NotFound("Author"))
}

func TestService_GetBooks(t *testing.T) {
	t.Parallel()
	db := testutils.NewDB(t)
	svc := NewService(db)
	ctx := context.Background()

	austen := &models.Author{FirstName: "Jane", FamilyName: "Austen"}
	shelley := &models.Author{FirstName: "Mary", FamilyName: "Shelley"}
	require.NoError(t, svc.CreateAuthor(ctx, austen))
	require.NoError(t, svc.CreateAuthor(ctx, shelley))
	createBook(t, db, austen.ID, "Persuasion")
	createBook(t, db, austen.ID, "Emma")
	createBook(t, db, shelley.ID, "Frankenstein")

	books, err := svc.GetBooks(ctx, austen.ID)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Emma", books[0].Title)
	assert.Equal(t, "Persuasion", books[1].Title)

	require.NoError(t, svc.DeleteAuthor(ctx, shelley.ID))
	_, err = svc.RetrieveAuthor(ctx, RetrieveAuthorOptions{ID: &shelley.ID})
	assert.True(t, errcodes.IsNotFound(err))
}
