package database

import (
	"context"
	"testing"
	"time"

	"cloud-drive/internal/models"

	"github.com/stretchr/testify/require"
)

func createTestFolder(t *testing.T, ownerID int64, parentID *string, name string) *models.Node {
	t.Helper()
	node, err := testStore.InsertNode(context.Background(), models.NewNode{
		OwnerID:  ownerID,
		ParentID: parentID,
		Name:     name,
		IsFolder: true,
	})
	require.NoError(t, err)
	require.NotNil(t, node)
	return node
}

func createTestFile(t *testing.T, ownerID int64, parentID *string, name string, size int64) *models.Node {
	t.Helper()
	key := "blobs/" + name
	mime := "text/plain"
	node, err := testStore.InsertNode(context.Background(), models.NewNode{
		OwnerID:     ownerID,
		ParentID:    parentID,
		Name:        name,
		StoragePath: &key,
		FileType:    &mime,
		Size:        size,
	})
	require.NoError(t, err)
	return node
}

func TestInsertNode(t *testing.T) {
	owner := createTestUser(t, "user_insert_node")

	folder := createTestFolder(t, owner.ID, nil, "Documents")
	require.Len(t, folder.ID, nodeIDLength)
	require.Equal(t, owner.ID, folder.OwnerID)
	require.True(t, folder.IsFolder)
	require.Nil(t, folder.ParentID)
	require.Nil(t, folder.StoragePath)
	require.Zero(t, folder.Size)
	require.False(t, folder.IsTrashed)
	require.Nil(t, folder.TrashedAt)
	require.NotZero(t, folder.CreatedAt)
	require.False(t, folder.RecentlyModified())

	file := createTestFile(t, owner.ID, &folder.ID, "notes.txt", 42)
	require.Equal(t, folder.ID, *file.ParentID)
	require.Equal(t, "blobs/notes.txt", *file.StoragePath)
	require.Equal(t, "text/plain", *file.FileType)
	require.Equal(t, int64(42), file.Size)
}

func TestInsertNode_ParentChecks(t *testing.T) {
	owner := createTestUser(t, "user_insert_parent")
	other := createTestUser(t, "user_insert_parent_other")
	ctx := context.Background()

	file := createTestFile(t, owner.ID, nil, "plain.txt", 1)
	foreign := createTestFolder(t, other.ID, nil, "Theirs")
	missing := "doesnotexist000000000"

	for name, parent := range map[string]string{
		"missing parent": missing,
		"file parent":    file.ID,
		"foreign parent": foreign.ID,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := testStore.InsertNode(ctx, models.NewNode{OwnerID: owner.ID, ParentID: &parent, Name: "x", IsFolder: true})
			require.ErrorIs(t, err, ErrParentNotFound)
		})
	}
}

func TestQueryChildren(t *testing.T) {
	owner := createTestUser(t, "user_query_children")
	other := createTestUser(t, "user_query_children_other")
	ctx := context.Background()

	root := createTestFolder(t, owner.ID, nil, "Root")
	createTestFile(t, owner.ID, &root.ID, "b.txt", 1)
	createTestFolder(t, owner.ID, &root.ID, "Zeta")
	createTestFile(t, owner.ID, &root.ID, "a.txt", 1)
	trashed := createTestFile(t, owner.ID, &root.ID, "gone.txt", 1)
	createTestFile(t, other.ID, nil, "foreign.txt", 1)

	now := time.Now()
	yes := true
	ok, err := testStore.UpdateNode(ctx, owner.ID, trashed.ID, models.NodeUpdate{Trashed: &yes, TrashedAt: &now})
	require.NoError(t, err)
	require.True(t, ok)

	children, err := testStore.QueryChildren(ctx, owner.ID, &root.ID, false)
	require.NoError(t, err)
	require.Len(t, children, 3)
	require.Equal(t, "Zeta", children[0].Name)
	require.Equal(t, "a.txt", children[1].Name)
	require.Equal(t, "b.txt", children[2].Name)

	all, err := testStore.QueryChildren(ctx, owner.ID, &root.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 4)

	top, err := testStore.QueryChildren(ctx, owner.ID, nil, false)
	require.NoError(t, err)
	require.Len(t, top, 1)
	require.Equal(t, root.ID, top[0].ID)
}

func TestGetNodeAndFindFolder(t *testing.T) {
	owner := createTestUser(t, "user_get_node")
	other := createTestUser(t, "user_get_node_other")
	ctx := context.Background()

	parent := createTestFolder(t, owner.ID, nil, "Parent")
	child := createTestFolder(t, owner.ID, &parent.ID, "Child")

	got, err := testStore.GetNode(ctx, owner.ID, child.ID)
	require.NoError(t, err)
	require.Equal(t, child.Name, got.Name)

	got, err = testStore.GetNode(ctx, other.ID, child.ID)
	require.NoError(t, err)
	require.Nil(t, got)

	found, err := testStore.FindFolder(ctx, owner.ID, &parent.ID, "Child")
	require.NoError(t, err)
	require.Equal(t, child.ID, found.ID)

	found, err = testStore.FindFolder(ctx, owner.ID, &parent.ID, "child")
	require.NoError(t, err)
	require.Nil(t, found)

	found, err = testStore.FindFolder(ctx, owner.ID, nil, "Parent")
	require.NoError(t, err)
	require.Equal(t, parent.ID, found.ID)
}

func TestUpdateNode(t *testing.T) {
	owner := createTestUser(t, "user_update_node")
	ctx := context.Background()

	a := createTestFolder(t, owner.ID, nil, "A")
	b := createTestFolder(t, owner.ID, nil, "B")
	file := createTestFile(t, owner.ID, &a.ID, "f.txt", 3)

	t.Run("move and move back to root", func(t *testing.T) {
		ok, err := testStore.UpdateNode(ctx, owner.ID, file.ID, models.NodeUpdate{Parent: &models.ParentRef{ID: &b.ID}})
		require.NoError(t, err)
		require.True(t, ok)
		got, _ := testStore.GetNode(ctx, owner.ID, file.ID)
		require.Equal(t, b.ID, *got.ParentID)

		ok, err = testStore.UpdateNode(ctx, owner.ID, file.ID, models.NodeUpdate{Parent: &models.ParentRef{}})
		require.NoError(t, err)
		require.True(t, ok)
		got, _ = testStore.GetNode(ctx, owner.ID, file.ID)
		require.Nil(t, got.ParentID)
	})

	t.Run("trash then restore clears trashed_at", func(t *testing.T) {
		now := time.Now()
		yes, no := true, false
		_, err := testStore.UpdateNode(ctx, owner.ID, a.ID, models.NodeUpdate{Trashed: &yes, TrashedAt: &now})
		require.NoError(t, err)
		got, _ := testStore.GetNode(ctx, owner.ID, a.ID)
		require.True(t, got.IsTrashed)
		require.NotNil(t, got.TrashedAt)

		_, err = testStore.UpdateNode(ctx, owner.ID, a.ID, models.NodeUpdate{Trashed: &no})
		require.NoError(t, err)
		got, _ = testStore.GetNode(ctx, owner.ID, a.ID)
		require.False(t, got.IsTrashed)
		require.Nil(t, got.TrashedAt)
	})

	t.Run("star and touch", func(t *testing.T) {
		yes := true
		later := time.Now().Add(time.Minute)
		size := int64(99)
		ok, err := testStore.UpdateNode(ctx, owner.ID, file.ID, models.NodeUpdate{IsStarred: &yes, UpdatedAt: &later, Size: &size})
		require.NoError(t, err)
		require.True(t, ok)
		got, _ := testStore.GetNode(ctx, owner.ID, file.ID)
		require.True(t, got.IsStarred)
		require.Equal(t, int64(99), got.Size)
		require.True(t, got.RecentlyModified())
	})

	t.Run("missing node", func(t *testing.T) {
		yes := true
		ok, err := testStore.UpdateNode(ctx, owner.ID, "nope", models.NodeUpdate{IsStarred: &yes})
		require.NoError(t, err)
		require.False(t, ok)

		ok, err = testStore.UpdateNode(ctx, owner.ID, "nope", models.NodeUpdate{})
		require.NoError(t, err)
		require.False(t, ok)
	})

	t.Run("missing parent", func(t *testing.T) {
		missing := "doesnotexist000000000"
		_, err := testStore.UpdateNode(ctx, owner.ID, file.ID, models.NodeUpdate{Parent: &models.ParentRef{ID: &missing}})
		require.ErrorIs(t, err, ErrParentNotFound)
	})
}

func TestDeleteNode_CascadesToDescendants(t *testing.T) {
	owner := createTestUser(t, "user_delete_node")
	ctx := context.Background()

	folder := createTestFolder(t, owner.ID, nil, "Folder")
	sub := createTestFolder(t, owner.ID, &folder.ID, "Sub")
	file := createTestFile(t, owner.ID, &sub.ID, "deep.txt", 1)

	ok, err := testStore.DeleteNode(ctx, owner.ID, folder.ID)
	require.NoError(t, err)
	require.True(t, ok)

	for _, id := range []string{folder.ID, sub.ID, file.ID} {
		got, err := testStore.GetNode(ctx, owner.ID, id)
		require.NoError(t, err)
		require.Nil(t, got)
	}

	ok, err = testStore.DeleteNode(ctx, owner.ID, folder.ID)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestListViews(t *testing.T) {
	owner := createTestUser(t, "user_list_views")
	ctx := context.Background()

	starred := createTestFile(t, owner.ID, nil, "starred.txt", 1)
	binned := createTestFile(t, owner.ID, nil, "binned.txt", 1)
	touched := createTestFile(t, owner.ID, nil, "touched.txt", 1)

	yes := true
	now := time.Now()
	later := now.Add(time.Minute)
	_, err := testStore.UpdateNode(ctx, owner.ID, starred.ID, models.NodeUpdate{IsStarred: &yes})
	require.NoError(t, err)
	_, err = testStore.UpdateNode(ctx, owner.ID, binned.ID, models.NodeUpdate{IsStarred: &yes, Trashed: &yes, TrashedAt: &now})
	require.NoError(t, err)
	_, err = testStore.UpdateNode(ctx, owner.ID, touched.ID, models.NodeUpdate{UpdatedAt: &later})
	require.NoError(t, err)

	list, err := testStore.ListStarred(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, starred.ID, list[0].ID)

	list, err = testStore.ListTrashed(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, binned.ID, list[0].ID)

	list, err = testStore.ListRecent(ctx, owner.ID, 100)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, touched.ID, list[0].ID)

	list, err = testStore.ListRecent(ctx, owner.ID, 1)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestDeleteAllNodes(t *testing.T) {
	owner := createTestUser(t, "user_delete_all")
	other := createTestUser(t, "user_delete_all_other")
	ctx := context.Background()

	folder := createTestFolder(t, owner.ID, nil, "Folder")
	createTestFile(t, owner.ID, &folder.ID, "one.txt", 1)
	createTestFile(t, owner.ID, nil, "two.txt", 1)
	kept := createTestFile(t, other.ID, nil, "kept.txt", 1)

	paths, err := testStore.ListStoragePaths(ctx, owner.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"blobs/one.txt", "blobs/two.txt"}, paths)

	n, err := testStore.DeleteAllNodes(ctx, owner.ID)
	require.NoError(t, err)
	require.Equal(t, int64(3), n)

	remaining, err := testStore.QueryChildren(ctx, owner.ID, nil, true)
	require.NoError(t, err)
	require.Empty(t, remaining)

	got, err := testStore.GetNode(ctx, other.ID, kept.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
}
