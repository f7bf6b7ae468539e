package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andreasstove999/ecommerce-system/fitting-room-service-go/internal/catalog"
)

func TestAddAllowsDuplicatesAndRemoveDropsAll(t *testing.T) {
	a, _ := catalog.Default().ByID(11)
	b, _ := catalog.Default().ByID(20)

	var c Cart
	c = c.Add(a)
	assert.Equal(t, Cart{a}, c)

	c = c.Add(a)
	assert.Equal(t, Cart{a, a}, c)

	c = c.Add(b)
	assert.Equal(t, 3, c.Len())
	assert.Equal(t, 999+999+799, c.Total())

	c = c.Remove(a.ID)
	assert.Equal(t, Cart{b}, c)
	assert.False(t, c.Contains(a.ID))
	assert.True(t, c.Contains(b.ID))

	c = c.Remove(b.ID)
	assert.Empty(t, c)
	assert.Equal(t, 0, c.Total())
}

func TestAddDoesNotAliasOriginal(t *testing.T) {
	a, _ := catalog.Default().ByID(1)
	b, _ := catalog.Default().ByID(2)

	base := make(Cart, 1, 4)
	base[0] = a
	left := base.Add(a)
	right := base.Add(b)

	assert.Equal(t, 1, left[1].ID)
	assert.Equal(t, 2, right[1].ID)
}

func TestRemoveMissingIsNoop(t *testing.T) {
	a, _ := catalog.Default().ByID(3)
	c := Cart{a}
	assert.Equal(t, Cart{a}, c.Remove(99))
}
