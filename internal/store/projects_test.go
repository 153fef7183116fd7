package store

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGetProject(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.CreateProject(ctx, "Vase", "/models/Vase", "spiral mode")
	require.NoError(t, err)

	assert.NotZero(t, p.ID)
	assert.Equal(t, "Vase", p.Name)
	assert.Equal(t, "/models/Vase", p.Path)
	assert.Equal(t, "spiral mode", p.Notes)
	assert.Empty(t, p.Files)
	assert.Empty(t, p.Tags)
	assert.Empty(t, p.Sources)

	got, err := s.GetProject(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestGetProjectNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetProject(context.Background(), 4242)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestCreateProjectDuplicatePath(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.CreateProject(ctx, "Vase", "/models/Vase", "")
	require.NoError(t, err)

	_, err = s.CreateProject(ctx, "Other", "/models/Vase", "")
	assert.ErrorIs(t, err, ErrDuplicatePath)
}

func TestUpdateProject(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	p, err := s.CreateProject(ctx, "Vase", "/models/Vase", "")
	require.NoError(t, err)

	p.Name = "Spiral Vase"
	p.Notes = "0.6mm nozzle"
	updated, err := s.UpdateProject(ctx, p)
	require.NoError(t, err)
	assert.Equal(t, "Spiral Vase", updated.Name)
	assert.Equal(t, "0.6mm nozzle", updated.Notes)

	_, err = s.UpdateProject(ctx, &Project{ID: 999, Name: "ghost", Path: "/ghost"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindProjectByPath(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.FindProjectByPath(ctx, "/models/Vase")
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := s.CreateProject(ctx, "Vase", "/models/Vase", "")
	require.NoError(t, err)
	_, err = s.CreateProject(ctx, "Vase Stand", "/models/Vase Stand", "")
	require.NoError(t, err)

	found, err := s.FindProjectByPath(ctx, "/models/Vase")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
}

func TestGetFilteredProjectsByName(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	for _, name := range []string{"Vase", "Benchy", "Big Vase", "100%_done"} {
		_, err := s.CreateProject(ctx, name, "/models/"+name, "")
		require.NoError(t, err)
	}

	tests := []struct {
		name     string
		filter   ProjectFilter
		expected []string
	}{
		{"no filter orders by name", ProjectFilter{}, []string{"100%_done", "Benchy", "Big Vase", "Vase"}},
		{"substring", NameContains("Vase"), []string{"Big Vase", "Vase"}},
		{"case insensitive ascii", NameContains("vase"), []string{"Big Vase", "Vase"}},
		{"percent is literal", NameContains("%"), []string{"100%_done"}},
		{"underscore is literal", NameContains("0_"), nil},
		{"quote does not break query", NameContains("' OR 1=1 --"), nil},
		{"exact path", PathEquals("/models/Benchy"), []string{"Benchy"}},
		{"path is not a substring match", PathEquals("/models/Bench"), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			projects, err := s.GetFilteredProjects(ctx, tt.filter)
			require.NoError(t, err)

			var names []string
			for _, p := range projects {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.expected, names)
		})
	}
}

func TestGetFilteredProjectsTagIntersection(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	both, err := s.CreateProject(ctx, "Both", "/models/Both", "")
	require.NoError(t, err)
	onlyA, err := s.CreateProject(ctx, "OnlyA", "/models/OnlyA", "")
	require.NoError(t, err)
	_, err = s.CreateProject(ctx, "None", "/models/None", "")
	require.NoError(t, err)

	_, err = s.AddTagToProject(ctx, both, "A")
	require.NoError(t, err)
	_, err = s.AddTagToProject(ctx, both, "B")
	require.NoError(t, err)
	_, err = s.AddTagToProject(ctx, onlyA, "A")
	require.NoError(t, err)

	projects, err := s.GetFilteredProjects(ctx, ProjectFilter{Tags: []string{"A", "B"}})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, both.ID, projects[0].ID)
	assert.Len(t, projects[0].Tags, 2, "results are hydrated with all their tags")

	projects, err = s.GetFilteredProjects(ctx, ProjectFilter{Tags: []string{"A"}})
	require.NoError(t, err)
	assert.Len(t, projects, 2)

	// Repeated tags count once
	projects, err = s.GetFilteredProjects(ctx, ProjectFilter{Tags: []string{"A", "A", "B"}})
	require.NoError(t, err)
	assert.Len(t, projects, 1)

	projects, err = s.GetFilteredProjects(ctx, NameContains("Only").WithTags("A", "B"))
	require.NoError(t, err)
	assert.Empty(t, projects)

	projects, err = s.GetFilteredProjects(ctx, ProjectFilter{Tags: []string{"missing"}})
	require.NoError(t, err)
	assert.Empty(t, projects)
}
