package idgen

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestInterfaceNameShape(t *testing.T) {
	re := regexp.MustCompile(`^[A-Za-z0-9]{8}$`)
	for i := 0; i < 100; i++ {
		name := InterfaceName()
		require.Regexp(t, re, name)
	}
}

func TestNamespaceNameShape(t *testing.T) {
	re := regexp.MustCompile(`^ns-[A-Za-z0-9]{8}$`)
	for i := 0; i < 100; i++ {
		name := NamespaceName()
		require.Regexp(t, re, name)
	}
}

func TestNFTableNameShape(t *testing.T) {
	re := regexp.MustCompile(`^table[A-Za-z0-9]{10}$`)
	for i := 0; i < 100; i++ {
		name := NFTableName()
		require.Regexp(t, re, name)
	}
}

func TestNamesAreNotConstant(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 20; i++ {
		seen[InterfaceName()] = struct{}{}
	}
	require.Greater(t, len(seen), 1)
}
