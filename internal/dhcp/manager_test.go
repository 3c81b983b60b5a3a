package dhcp

import (
	"net"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeOS struct {
	written map[string][]byte
	files   map[string][]byte
	removed []string
}

func newFakeOS() *fakeOS {
	return &fakeOS{written: map[string][]byte{}, files: map[string][]byte{}}
}

func (f *fakeOS) WriteFile(path string, data []byte, perm os.FileMode) error {
	f.written[path] = data
	f.files[path] = data
	return nil
}

func (f *fakeOS) ReadFile(path string) ([]byte, error) {
	data, ok := f.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return data, nil
}

func (f *fakeOS) Remove(path string) error {
	f.removed = append(f.removed, path)
	delete(f.files, path)
	return nil
}

func TestRenderIncludesFixedDefaultNetworkParameters(t *testing.T) {
	m, err := New(newFakeOS(), "", nil)
	require.NoError(t, err)

	b := Binding{
		ConfPath:   "/run/fosbr0.conf",
		PIDPath:    "/run/fosbr0.pid",
		LeasesPath: "/run/fosbr0.leases",
		LogPath:    "/run/fosbr0.log",
	}
	p := Params{
		Interface:  "fosbr0",
		RangeStart: net.ParseIP("10.240.0.2"),
		RangeEnd:   net.ParseIP("10.240.255.254"),
		Gateway:    net.ParseIP("10.240.0.1"),
		DNS:        []net.IP{net.ParseIP("208.67.222.222")},
	}

	rendered, err := m.Render(b, p)
	require.NoError(t, err)
	require.Contains(t, rendered, "interface=fosbr0")
	require.Contains(t, rendered, "10.240.0.2,10.240.255.254")
	require.Contains(t, rendered, "10.240.0.1")
	require.Contains(t, rendered, "208.67.222.222")
	require.Contains(t, rendered, "/run/fosbr0.pid")
}

func TestStopRemovesArtifactsAfterReadingPid(t *testing.T) {
	os := newFakeOS()
	m, err := New(os, "", nil)
	require.NoError(t, err)

	b := Binding{
		ConfPath:   "/run/fosbr0.conf",
		PIDPath:    "/run/fosbr0.pid",
		LeasesPath: "/run/fosbr0.leases",
		LogPath:    "/run/fosbr0.log",
	}
	os.files[b.PIDPath] = []byte("999999\n")

	err = m.Stop(b)
	require.NoError(t, err)
	require.Contains(t, os.removed, b.ConfPath)
	require.Contains(t, os.removed, b.PIDPath)
	require.Contains(t, os.removed, b.LeasesPath)
	require.Contains(t, os.removed, b.LogPath)
}

func TestStopFailsOnUnreadablePidFile(t *testing.T) {
	m, err := New(newFakeOS(), "", nil)
	require.NoError(t, err)
	err = m.Stop(Binding{PIDPath: "/run/missing.pid"})
	require.Error(t, err)
}
