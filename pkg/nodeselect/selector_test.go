package nodeselect_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/searchkit/pkg/nodeselect"
)

func rackNode(addr, rack string) nodeselect.Node {
	return nodeselect.Node{
		Address:    addr,
		Attributes: map[string][]string{"rack_id": {rack}},
	}
}

func addresses(nodes []nodeselect.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Address)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("empty preference", func(t *testing.T) {
		t.Parallel()
		_, err := nodeselect.New("")
		assert.ErrorIs(t, err, nodeselect.ErrEmptyPreference)
	})

	t.Run("empty attribute", func(t *testing.T) {
		t.Parallel()
		_, err := nodeselect.New("r1", nodeselect.WithAttribute(""))
		assert.ErrorIs(t, err, nodeselect.ErrEmptyAttribute)
	})

	t.Run("unknown policy", func(t *testing.T) {
		t.Parallel()
		_, err := nodeselect.New("r1", nodeselect.WithMissingPolicy(nodeselect.MissingPolicy(7)))
		assert.ErrorIs(t, err, nodeselect.ErrUnknownPolicy)
	})

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		sel, err := nodeselect.New("r1")
		require.NoError(t, err)
		assert.Equal(t, nodeselect.DefaultAttribute, sel.Attribute())
		assert.Equal(t, "r1", sel.Preferred())
		assert.Equal(t, nodeselect.MissingIsError, sel.MissingPolicy())
	})
}

func TestParseMissingPolicy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want nodeselect.MissingPolicy
		err  bool
	}{
		{in: "", want: nodeselect.MissingIsError},
		{in: "error", want: nodeselect.MissingIsError},
		{in: " Mismatch ", want: nodeselect.MissingIsMismatch},
		{in: "ignore", err: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, err := nodeselect.ParseMissingPolicy(tt.in)
			if tt.err {
				assert.ErrorIs(t, err, nodeselect.ErrUnknownPolicy)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.String(), mustParse(t, got.String()).String())
		})
	}
}

func mustParse(t *testing.T, s string) nodeselect.MissingPolicy {
	t.Helper()
	p, err := nodeselect.ParseMissingPolicy(s)
	require.NoError(t, err)
	return p
}

func TestSelect_Example(t *testing.T) {
	t.Parallel()

	nodes := []nodeselect.Node{
		rackNode("A", "r1"),
		rackNode("B", "r2"),
		rackNode("C", "r1"),
	}

	sel, err := nodeselect.New("r1")
	require.NoError(t, err)
	got, err := sel.Select(nodes)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "C"}, addresses(got))

	sel, err = nodeselect.New("r3")
	require.NoError(t, err)
	got, err = sel.Select(nodes)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, addresses(got))
}

func TestSelect_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	nodes := []nodeselect.Node{
		rackNode("A", "r2"),
		rackNode("B", "r1"),
		rackNode("C", "r2"),
	}
	sel, err := nodeselect.New("r1")
	require.NoError(t, err)

	got, err := sel.Select(nodes)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, addresses(got))
	assert.Equal(t, []string{"A", "B", "C"}, addresses(nodes))
}

func TestSelect_FallbackReturnsSameSlice(t *testing.T) {
	t.Parallel()

	nodes := []nodeselect.Node{rackNode("A", "r2"), rackNode("B", "r3")}
	sel, err := nodeselect.New("r1")
	require.NoError(t, err)

	got, err := sel.Select(nodes)
	require.NoError(t, err)
	require.Len(t, got, len(nodes))
	assert.Same(t, &nodes[0], &got[0])
}

func TestSelect_Empty(t *testing.T) {
	t.Parallel()

	sel, err := nodeselect.New("r1")
	require.NoError(t, err)

	got, err := sel.Select(nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = sel.Select([]nodeselect.Node{})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelect_Properties(t *testing.T) {
	t.Parallel()

	racks := []string{"r1", "r2", "r3"}
	sel, err := nodeselect.New("r1")
	require.NoError(t, err)

	// Every rack assignment of up to four nodes.
	for size := 1; size <= 4; size++ {
		total := 1
		for range size {
			total *= len(racks)
		}
		for combo := range total {
			nodes := make([]nodeselect.Node, size)
			hasPreferred := false
			c := combo
			for i := range nodes {
				rack := racks[c%len(racks)]
				c /= len(racks)
				nodes[i] = rackNode(fmt.Sprintf("n%d", i), rack)
				hasPreferred = hasPreferred || rack == "r1"
			}

			got, err := sel.Select(nodes)
			require.NoError(t, err)
			require.NotEmpty(t, got, "non-empty input must not yield empty output")

			if hasPreferred {
				for _, n := range got {
					rack, _ := n.Attribute("rack_id")
					assert.Equal(t, "r1", rack)
				}
			} else {
				assert.Equal(t, addresses(nodes), addresses(got))
			}

			again, err := sel.Select(got)
			require.NoError(t, err)
			assert.Equal(t, addresses(got), addresses(again), "filter must be idempotent")
		}
	}
}

func TestSelect_MissingAttribute(t *testing.T) {
	t.Parallel()

	nodes := []nodeselect.Node{
		rackNode("A", "r1"),
		{Address: "B", Attributes: map[string][]string{"zone": {"z1"}}},
		{Address: "C", Attributes: map[string][]string{"rack_id": {}}},
	}

	t.Run("error policy", func(t *testing.T) {
		t.Parallel()
		sel, err := nodeselect.New("r1")
		require.NoError(t, err)

		_, err = sel.Select(nodes)
		require.Error(t, err)
		assert.ErrorIs(t, err, nodeselect.ErrAttributeLookup)

		var missing nodeselect.ErrMissingAttribute
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "B", missing.Node)
		assert.Equal(t, 1, missing.Position)
		assert.Equal(t, "rack_id", missing.Attribute)
	})

	t.Run("empty value list is missing", func(t *testing.T) {
		t.Parallel()
		sel, err := nodeselect.New("r1")
		require.NoError(t, err)

		_, err = sel.Select(nodes[2:])
		var missing nodeselect.ErrMissingAttribute
		require.True(t, errors.As(err, &missing))
		assert.Equal(t, "C", missing.Node)
	})

	t.Run("mismatch policy", func(t *testing.T) {
		t.Parallel()
		sel, err := nodeselect.New("r1", nodeselect.WithMissingPolicy(nodeselect.MissingIsMismatch))
		require.NoError(t, err)

		got, err := sel.Select(nodes)
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, addresses(got))

		got, err = sel.Select(nodes[1:])
		require.NoError(t, err)
		assert.Equal(t, []string{"B", "C"}, addresses(got))
	})
}

func TestFilter_CustomNodeType(t *testing.T) {
	t.Parallel()

	type member struct {
		name string
		zone string
	}
	zoneOf := func(m *member, attr string) (string, bool) {
		if attr != "zone" || m.zone == "" {
			return "", false
		}
		return m.zone, true
	}

	sel, err := nodeselect.New("eu-1", nodeselect.WithAttribute("zone"))
	require.NoError(t, err)

	members := []*member{{"a", "eu-1"}, {"b", "us-1"}, {"c", "eu-1"}}
	got, err := nodeselect.Filter(sel, members, zoneOf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].name)
	assert.Equal(t, "c", got[1].name)

	_, err = nodeselect.Filter(sel, []*member{{"d", ""}}, zoneOf)
	var missing nodeselect.ErrMissingAttribute
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, 0, missing.Position)
	assert.Empty(t, missing.Node)
}

func TestSelect_Concurrent(t *testing.T) {
	t.Parallel()

	sel, err := nodeselect.New("r1")
	require.NoError(t, err)
	nodes := []nodeselect.Node{rackNode("A", "r1"), rackNode("B", "r2")}

	var wg sync.WaitGroup
	for range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				got, err := sel.Select(nodes)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, []string{"A"}, addresses(got))
			}
		}()
	}
	wg.Wait()
}
