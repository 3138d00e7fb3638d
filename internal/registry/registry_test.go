package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/assessment/internal/models"
)

func def(slug, title string) *models.Definition {
	d := models.NewDefinition(slug)
	d.Title = title
	return d
}

func TestRegistryRegisterAndFind(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(def("b", "B")))
	require.NoError(t, reg.Register(def("a", "A")))
	require.NoError(t, reg.Register(def("b", "B2")))

	got, err := reg.Find("b")
	require.NoError(t, err)
	assert.Equal(t, "B2", got.Title, "re-registering replaces")
	assert.Equal(t, []string{"b", "a"}, reg.Slugs(), "replaced slug keeps its position")
	assert.Equal(t, 2, reg.Len())

	_, err = reg.Find("missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestRegistryRegisterRejectsInvalid(t *testing.T) {
	reg := New()
	assert.Error(t, reg.Register(nil))
	assert.Error(t, reg.Register(def("", "No slug")))
	assert.Zero(t, reg.Len())
}

func TestRegistryResetAndReplace(t *testing.T) {
	reg := New()
	require.NoError(t, reg.Register(def("old", "Old")))

	reg.Replace([]*models.Definition{def("x", "X"), nil, def("y", "Y"), def("x", "X2"), def("", "skip")})
	assert.Equal(t, []string{"x", "y"}, reg.Slugs())
	x, err := reg.Find("x")
	require.NoError(t, err)
	assert.Equal(t, "X2", x.Title)
	_, err = reg.Find("old")
	assert.ErrorIs(t, err, ErrNotFound)

	all := reg.All()
	require.Len(t, all, 2)
	assert.Equal(t, "y", all[1].Slug)

	reg.Reset()
	assert.Zero(t, reg.Len())
	assert.Empty(t, reg.All())
}

func TestRegistryConcurrentReplaceAndFind(t *testing.T) {
	reg := New()
	setA := []*models.Definition{def("a1", ""), def("a2", "")}
	setB := []*models.Definition{def("b1", ""), def("b2", ""), def("b3", "")}
	reg.Replace(setA)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				reg.Replace(setA)
			} else {
				reg.Replace(setB)
			}
		}(i)
		go func() {
			defer wg.Done()
			n := len(reg.All())
			assert.True(t, n == 2 || n == 3, fmt.Sprintf("observed partial registry of %d", n))
		}()
	}
	wg.Wait()
}
