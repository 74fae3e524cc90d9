package client

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timeline/internal/domain/journal"
)

func TestApp_PutEntry(t *testing.T) {
	tests := []struct {
		name    string
		entry   *journal.Entry
		wantErr error
	}{
		{
			name:  "plain note",
			entry: &journal.Entry{Type: journal.EntryNote, Content: "hello"},
		},
		{
			name:  "task with fields",
			entry: &journal.Entry{Type: journal.EntryNote, ContentType: journal.ContentTypeTask, FieldValues: journal.FieldValues{"done": true}},
		},
		{
			name:    "unknown content type",
			entry:   &journal.Entry{Type: journal.EntryNote, ContentType: "movie"},
			wantErr: journal.ErrValidation,
		},
		{
			name:    "session end with category",
			entry:   &journal.Entry{Type: journal.EntrySessionEnd, Category: "hustle"},
			wantErr: journal.ErrValidation,
		},
		{
			name:    "bad entry type",
			entry:   &journal.Entry{Type: "PARTY"},
			wantErr: journal.ErrValidation,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			app, _ := newTestApp(t, newFakeRemote(), 50)

			saved, err := app.PutEntry(ctx, tt.entry)
			entries, lerr := app.Entries(ctx)
			require.NoError(t, lerr)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, entries)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, saved.ID)
			assert.NotZero(t, saved.Timestamp)
			assert.Empty(t, tt.entry.ID, "caller entry must not be mutated")
			require.Len(t, entries, 1)
			assert.Equal(t, saved.ID, entries[0].ID)
		})
	}
}

func TestApp_LinksAndDelete(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, newFakeRemote(), 50)

	for _, id := range []string{"a", "b", "c"} {
		_, err := app.PutEntry(ctx, note(id, 1, id))
		require.NoError(t, err)
	}
	require.NoError(t, app.LinkEntries(ctx, "a", "b"))
	require.NoError(t, app.LinkEntries(ctx, "a", "c"))
	assert.ErrorIs(t, app.LinkEntries(ctx, "a", "missing"), journal.ErrEntryNotFound)

	snap, err := app.Snapshot(ctx)
	require.NoError(t, err)
	arena := journal.NewArena(snap.Entries)
	assert.Equal(t, []string{"b", "c"}, arena["a"].LinkedEntries)
	assert.Equal(t, []string{"a"}, arena["b"].LinkedEntries)

	require.NoError(t, app.UnlinkEntries(ctx, "b", "a"))
	snap, err = app.Snapshot(ctx)
	require.NoError(t, err)
	arena = journal.NewArena(snap.Entries)
	assert.Equal(t, []string{"c"}, arena["a"].LinkedEntries)
	assert.Empty(t, arena["b"].LinkedEntries)

	require.NoError(t, app.DeleteEntry(ctx, "a"))
	snap, err = app.Snapshot(ctx)
	require.NoError(t, err)
	arena = journal.NewArena(snap.Entries)
	assert.NotContains(t, arena, "a")
	assert.Empty(t, arena["c"].LinkedEntries)

	assert.ErrorIs(t, app.DeleteEntry(ctx, "a"), journal.ErrEntryNotFound)
}

func TestApp_ContentTypes(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, newFakeRemote(), 50)

	require.NoError(t, app.PutContentType(ctx, &journal.ContentType{
		ID:   "book",
		Name: "Book",
		Fields: []journal.FieldDescriptor{
			{ID: "format", Name: "Format", Type: journal.FieldDropdown, Options: []string{"paper", "ebook"}},
		},
	}))
	assert.ErrorIs(t, app.PutContentType(ctx, &journal.ContentType{ID: "x"}), journal.ErrValidation)

	_, err := app.PutEntry(ctx, &journal.Entry{Type: journal.EntryNote, ContentType: "book", FieldValues: journal.FieldValues{"format": "vinyl"}})
	assert.ErrorIs(t, err, journal.ErrValidation)
	_, err = app.PutEntry(ctx, &journal.Entry{Type: journal.EntryNote, ContentType: "book", FieldValues: journal.FieldValues{"format": "paper"}})
	require.NoError(t, err)

	assert.ErrorIs(t, app.DeleteContentType(ctx, journal.ContentTypeTask), ErrBuiltinContentType)
	require.NoError(t, app.DeleteContentType(ctx, "book"))
	snap, err := app.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.ContentTypes)
}

func TestApp_MediaItems(t *testing.T) {
	ctx := context.Background()
	app, _ := newTestApp(t, newFakeRemote(), 50)

	require.NoError(t, app.PutMediaItem(ctx, &journal.MediaItem{ID: "m1", Title: "Dune"}))
	require.NoError(t, app.PutMediaItem(ctx, &journal.MediaItem{ID: "m1", Title: "Dune Messiah"}))
	snap, err := app.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap.MediaItems, 1)
	assert.Equal(t, "Dune Messiah", snap.MediaItems[0].Title)
	assert.NotZero(t, snap.MediaItems[0].CreatedAt)

	require.NoError(t, app.DeleteMediaItem(ctx, "m1"))
	snap, err = app.Snapshot(ctx)
	require.NoError(t, err)
	assert.Empty(t, snap.MediaItems)
}
