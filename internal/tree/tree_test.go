package tree

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func seededTree() *Tree {
	t := New(100)
	t.Add(Node{ID: 101, ParentID: 100, Name: "Eng"})
	t.Add(Node{ID: 102, ParentID: 101, Name: "Backend"})
	t.Add(Node{ID: 103, ParentID: 100, Name: "Sales"})
	return t
}

func TestLookupByPath(t *testing.T) {
	tr := seededTree()

	id, ok := tr.LookupByPath("")
	require.True(t, ok)
	require.Equal(t, 100, id)

	id, ok = tr.LookupByPath("Eng/Backend")
	require.True(t, ok)
	require.Equal(t, 102, id)

	_, ok = tr.LookupByPath("Eng/Frontend")
	require.False(t, ok)

	// Case-sensitive on each segment.
	_, ok = tr.LookupByPath("eng")
	require.False(t, ok)
}

func TestEnsurePathCreatesMissingSegmentsInOrder(t *testing.T) {
	tr := seededTree()

	var created []string
	next := 200
	create := func(_ context.Context, name string, parentID int) (int, error) {
		created = append(created, fmt.Sprintf("%s<-%d", name, parentID))
		next++
		return next, nil
	}

	id, err := tr.EnsurePath(context.Background(), "Eng/Frontend/Web", create)
	require.NoError(t, err)
	require.Equal(t, 202, id)
	require.Equal(t, []string{"Frontend<-101", "Web<-201"}, created)

	// The new nodes are immediately resolvable.
	again, err := tr.EnsurePath(context.Background(), "Eng/Frontend/Web", create)
	require.NoError(t, err)
	require.Equal(t, id, again)
	require.Len(t, created, 2)
}

func TestEnsurePathWithoutCreatorAllocatesPlaceholders(t *testing.T) {
	tr := seededTree()

	id, err := tr.EnsurePath(context.Background(), "Ops/Platform", nil)
	require.NoError(t, err)
	require.Negative(t, id)

	resolved, ok := tr.LookupByPath("Ops/Platform")
	require.True(t, ok)
	require.Equal(t, id, resolved)
}

func TestEnsurePathPropagatesCreateErrors(t *testing.T) {
	tr := seededTree()

	boom := errors.New("boom")
	_, err := tr.EnsurePath(context.Background(), "Ops", func(context.Context, string, int) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
}

func TestChildrenOf(t *testing.T) {
	tr := seededTree()

	children := tr.ChildrenOf(100)
	require.Len(t, children, 2)
	require.Equal(t, "Eng", children[0].Name)
	require.Equal(t, "Sales", children[1].Name)
}
