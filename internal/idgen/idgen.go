// Package idgen generates the random kernel-object names the orchestrator
// assigns to interfaces, namespaces and nft tables before any kernel
// mutation happens, per the naming rules in spec.md §6.
package idgen

import (
	"crypto/rand"
	"fmt"
)

const alphanumeric = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

func randomString(n int) string {
	buf := make([]byte, n)
	idx := make([]byte, n)
	if _, err := rand.Read(idx); err != nil {
		panic(fmt.Sprintf("idgen: crypto/rand unavailable: %v", err))
	}
	for i, b := range idx {
		buf[i] = alphanumeric[int(b)%len(alphanumeric)]
	}
	return string(buf)
}

// InterfaceName returns an 8-character ASCII-alphanumeric interface name.
func InterfaceName() string {
	return randomString(8)
}

// NamespaceName returns a namespace name of the form "ns-" + 8 characters.
func NamespaceName() string {
	return "ns-" + randomString(8)
}

// NFTableName returns an nft table name of the form "table" + 10 characters.
func NFTableName() string {
	return "table" + randomString(10)
}
