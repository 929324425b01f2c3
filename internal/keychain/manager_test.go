// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

package keychain

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreDSNRoundTrip(t *testing.T) {
	m := NewWithKeyring(keyring.NewArrayKeyring(nil))

	_, err := m.LoadStoreDSN()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.SaveStoreDSN("mysql://u:p@db:3306/zoo"))
	got, err := m.LoadStoreDSN()
	require.NoError(t, err)
	assert.Equal(t, "mysql://u:p@db:3306/zoo", got)

	require.NoError(t, m.ClearStoreDSN())
	_, err = m.LoadStoreDSN()
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, m.ClearStoreDSN(), "clearing twice is fine")
}

func TestSaveEmptyDSN(t *testing.T) {
	m := NewWithKeyring(keyring.NewArrayKeyring(nil))
	assert.Error(t, m.SaveStoreDSN(""))
}
