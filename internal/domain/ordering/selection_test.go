package ordering

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelection_Add(t *testing.T) {
	latte := testProduct("latte", 4.50)
	oat := testCustomization("oat-milk", "milk", 0.50)

	t.Run("merges quantities for identical pairings", func(t *testing.T) {
		s := NewSelection(uuid.New())

		_, err := s.Add(latte, 1, []Customization{oat})
		require.NoError(t, err)
		item, err := s.Add(latte, 2, []Customization{oat})
		require.NoError(t, err)

		assert.Equal(t, 3, item.Quantity)
		assert.Len(t, s.Items(), 1)
		assert.Equal(t, 3, s.Count())
	})

	t.Run("different customization sets stay separate lines", func(t *testing.T) {
		s := NewSelection(uuid.New())

		_, err := s.Add(latte, 1, []Customization{oat})
		require.NoError(t, err)
		_, err = s.Add(latte, 1, nil)
		require.NoError(t, err)

		assert.Len(t, s.Items(), 2)
		assert.Equal(t, 2, s.Count())
	})

	t.Run("customization order does not affect merging", func(t *testing.T) {
		s := NewSelection(uuid.New())
		shot := testCustomization("extra-shot", "", 1.00)

		_, err := s.Add(latte, 1, []Customization{oat, shot})
		require.NoError(t, err)
		item, err := s.Add(latte, 1, []Customization{shot, oat})
		require.NoError(t, err)

		assert.Equal(t, 2, item.Quantity)
		assert.Len(t, s.Items(), 1)
	})

	t.Run("clamps non-positive quantity to one", func(t *testing.T) {
		s := NewSelection(uuid.New())

		item, err := s.Add(latte, -3, nil)
		require.NoError(t, err)
		assert.Equal(t, 1, item.Quantity)
	})
}

func TestSelection_Decrement(t *testing.T) {
	latte := testProduct("latte", 4.50)
	key := DeriveLineKey("latte", nil)

	t.Run("lowers quantity", func(t *testing.T) {
		s := NewSelection(uuid.New())
		_, err := s.Add(latte, 2, nil)
		require.NoError(t, err)

		assert.True(t, s.Decrement(key))
		assert.Equal(t, 1, s.Item(key).Quantity)
	})

	t.Run("removes line item at quantity one", func(t *testing.T) {
		s := NewSelection(uuid.New())
		_, err := s.Add(latte, 1, nil)
		require.NoError(t, err)

		assert.True(t, s.Decrement(key))
		assert.False(t, s.Contains(key))
		assert.True(t, s.IsEmpty())
	})

	t.Run("absent key is a no-op", func(t *testing.T) {
		s := NewSelection(uuid.New())
		assert.False(t, s.Decrement("latte::"))
	})
}

func TestSelection_Remove(t *testing.T) {
	s := NewSelection(uuid.New())
	latte := testProduct("latte", 4.50)
	mocha := testProduct("mocha", 5.00)

	_, err := s.Add(latte, 5, nil)
	require.NoError(t, err)
	_, err = s.Add(mocha, 1, nil)
	require.NoError(t, err)

	assert.True(t, s.Remove(DeriveLineKey("latte", nil)))
	assert.False(t, s.Remove(DeriveLineKey("latte", nil)))

	require.Len(t, s.Items(), 1)
	assert.Equal(t, "mocha", s.Items()[0].Product.ID)
	assert.Equal(t, s.Items()[0], s.Item(DeriveLineKey("mocha", nil)))
}

func TestSelection_Toggle(t *testing.T) {
	s := NewSelection(uuid.New())
	latte := testProduct("latte", 4.50)

	present, err := s.Toggle(latte, nil)
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, 1, s.Count())

	present, err = s.Toggle(latte, nil)
	require.NoError(t, err)
	assert.False(t, present)
	assert.True(t, s.IsEmpty())
}

func TestSelection_Clear(t *testing.T) {
	s := NewSelection(uuid.New())
	_, err := s.Add(testProduct("latte", 4.50), 2, nil)
	require.NoError(t, err)

	assert.True(t, s.Clear())
	assert.True(t, s.IsEmpty())
	assert.Equal(t, 0, s.Count())
	assert.False(t, s.Clear())
}

func TestSelection_Subtotal(t *testing.T) {
	s := NewSelection(uuid.New())

	assert.Equal(t, "0.00 EUR", s.Subtotal().String())

	_, err := s.Add(testProduct("latte", 4.50), 2, []Customization{
		testCustomization("oat-milk", "milk", 0.50),
	})
	require.NoError(t, err)
	_, err = s.Add(testProduct("croissant", 2.80), 1, nil)
	require.NoError(t, err)

	assert.Equal(t, "12.80 EUR", s.Subtotal().String())
}

func TestRestoreSelection(t *testing.T) {
	first, err := NewLineItem(testProduct("latte", 4.50), 2, nil)
	require.NoError(t, err)
	second, err := NewLineItem(testProduct("mocha", 5.00), 1, nil)
	require.NoError(t, err)

	s := RestoreSelection(uuid.New(), []*LineItem{first, second})

	require.Len(t, s.Items(), 2)
	assert.Equal(t, "latte", s.Items()[0].Product.ID)
	assert.Equal(t, 3, s.Count())

	item, err := s.Add(testProduct("latte", 4.50), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, item.Quantity)
}
