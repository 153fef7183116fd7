package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetOrCreateTag(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	first, err := s.GetOrCreateTag(ctx, "foo")
	require.NoError(t, err)
	second, err := s.GetOrCreateTag(ctx, "foo")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	tags, err := s.ListAllTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)

	_, err = s.GetOrCreateTag(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidTag)
}

func TestAddTagToProjectIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.CreateProject(ctx, "Vase", "/models/Vase", "")
	require.NoError(t, err)

	p, err = s.AddTagToProject(ctx, p, "Printed")
	require.NoError(t, err)
	p, err = s.AddTagToProject(ctx, p, "Printed")
	require.NoError(t, err)

	require.Len(t, p.Tags, 1)
	assert.Equal(t, "Printed", p.Tags[0].Text)
	assert.True(t, p.HasTag("Printed"))
}

func TestRemoveTagKeepsTagRow(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	vase, err := s.CreateProject(ctx, "Vase", "/models/Vase", "")
	require.NoError(t, err)
	benchy, err := s.CreateProject(ctx, "Benchy", "/models/Benchy", "")
	require.NoError(t, err)

	vase, err = s.AddTagToProject(ctx, vase, "Printed")
	require.NoError(t, err)
	printed := vase.Tags[0]

	vase, err = s.RemoveTagFromProject(ctx, vase, printed)
	require.NoError(t, err)
	assert.Empty(t, vase.Tags)

	tag, err := s.GetTag(ctx, printed.ID)
	require.NoError(t, err)
	assert.Equal(t, "Printed", tag.Text)

	benchy, err = s.AddTagToProject(ctx, benchy, "Printed")
	require.NoError(t, err)
	require.Len(t, benchy.Tags, 1)
	assert.Equal(t, printed.ID, benchy.Tags[0].ID, "the existing tag row is reused")
}

func TestListAllTagsOrderedAndUsage(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.CreateProject(ctx, "Vase", "/models/Vase", "")
	require.NoError(t, err)

	for _, text := range []string{"petg", "abs", "pla"} {
		_, err := s.GetOrCreateTag(ctx, text)
		require.NoError(t, err)
	}
	_, err = s.AddTagToProject(ctx, p, "pla")
	require.NoError(t, err)

	tags, err := s.ListAllTags(ctx)
	require.NoError(t, err)
	var texts []string
	for _, tag := range tags {
		texts = append(texts, tag.Text)
	}
	assert.Equal(t, []string{"abs", "petg", "pla"}, texts)

	usage, err := s.TagUsage(ctx)
	require.NoError(t, err)
	require.Len(t, usage, 3)
	assert.Equal(t, 0, usage[0].Projects)
	assert.Equal(t, "pla", usage[2].Tag.Text)
	assert.Equal(t, 1, usage[2].Projects)
}

func TestAddSource(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.CreateProject(ctx, "Vase", "/models/Vase", "")
	require.NoError(t, err)

	p, err = s.AddSource(ctx, p, "Printables", "https://www.printables.com/model/1")
	require.NoError(t, err)
	p, err = s.AddSource(ctx, p, "Mirror", "https://example.com/vase.zip")
	require.NoError(t, err)

	require.Len(t, p.Sources, 2)
	assert.Equal(t, "Printables", p.Sources[0].Name)
	assert.Equal(t, "https://example.com/vase.zip", p.Sources[1].URL)
	assert.Equal(t, p.ID, p.Sources[1].ProjectID)
}
