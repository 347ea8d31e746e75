package contract_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Mohsinsiddi/w3dapp/internal/contract"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRegistry(t *testing.T) *contract.Registry {
	t.Helper()
	return contract.NewRegistry(filepath.Join(t.TempDir(), contract.ProjectFile))
}

func TestNewRegistryEmpty(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, reg.Load(), "missing file is an empty project")
	assert.Empty(t, reg.All())
}

func TestRegistryAddAndGet(t *testing.T) {
	reg := newRegistry(t)
	reg.Add(&contract.Entry{Name: "office", Network: "localhost", Kind: "office"})

	got, err := reg.Get("Office", "LOCALHOST")
	require.NoError(t, err)
	assert.Equal(t, "office", got.Kind)
	assert.False(t, got.HasAddress())

	_, err = reg.Get("office", "sepolia")
	assert.ErrorIs(t, err, contract.ErrContractNotFound)
}

func TestRegistrySaveLoadRoundTrip(t *testing.T) {
	reg := newRegistry(t)
	reg.Add(&contract.Entry{Name: "office", Network: "localhost", Kind: "office",
		Artifact: "artifacts/contracts/SharedOfficeBookingSystem.sol/SharedOfficeBookingSystem.json"})
	reg.SetAddress("atm", "localhost", common.HexToAddress("0x5FbDB2315678afecb367f032d93F642f64180aa3"))
	require.NoError(t, reg.Save())

	data, err := os.ReadFile(reg.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "[[contract]]")

	loaded := contract.NewRegistry(reg.Path())
	require.NoError(t, loaded.Load())
	all := loaded.All()
	require.Len(t, all, 2)
	assert.Equal(t, "atm", all[0].Name)
	assert.Equal(t, "0x5FbDB2315678afecb367f032d93F642f64180aa3", all[0].Address)
	assert.True(t, all[0].HasAddress())
	assert.Equal(t, "office", all[1].Name)
}

func TestRegistrySetAddressUpdatesExisting(t *testing.T) {
	reg := newRegistry(t)
	reg.Add(&contract.Entry{Name: "office", Network: "localhost", Kind: "office"})
	addr := common.HexToAddress("0xe7f1725E7734CE288F8367e1Bb143E90bb3F0512")

	e := reg.SetAddress("office", "localhost", addr)
	assert.Equal(t, "office", e.Kind, "existing fields are kept")
	assert.Equal(t, addr.Hex(), e.Address)
	assert.Len(t, reg.All(), 1)
}

func TestRegistryRemove(t *testing.T) {
	reg := newRegistry(t)
	reg.Add(&contract.Entry{Name: "atm", Network: "localhost"})
	require.NoError(t, reg.Remove("atm", "localhost"))
	assert.ErrorIs(t, reg.Remove("atm", "localhost"), contract.ErrContractNotFound)
}

func TestRegistryLoadRejectsNamelessEntry(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, os.WriteFile(reg.Path(), []byte("[[contract]]\nnetwork = \"localhost\"\n"), 0o644))
	assert.Error(t, reg.Load())
}

func TestRegistryLoadInvalidTOML(t *testing.T) {
	reg := newRegistry(t)
	require.NoError(t, os.WriteFile(reg.Path(), []byte("[[contract]\n"), 0o644))
	assert.Error(t, reg.Load())
}

func TestRegistryMethodsBuiltin(t *testing.T) {
	reg := newRegistry(t)
	set, err := reg.Methods(&contract.Entry{Name: "atm"})
	require.NoError(t, err)
	assert.True(t, set.IsView("getBalance"))

	set, err = reg.Methods(&contract.Entry{Name: "booking", Kind: "office"})
	require.NoError(t, err)
	assert.True(t, set.IsPayable("bookOffice"))
}

func TestRegistryMethodsArtifactRelativeToProject(t *testing.T) {
	dir := t.TempDir()
	reg := contract.NewRegistry(filepath.Join(dir, contract.ProjectFile))
	abiPath := filepath.Join(dir, "abi", "booking.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(abiPath), 0o755))
	require.NoError(t, os.WriteFile(abiPath,
		[]byte(`[{"type":"function","name":"earnings","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"","type":"uint256"}]}]`),
		0o644))

	e := &contract.Entry{Name: "booking", Artifact: "abi/booking.json"}
	assert.Equal(t, abiPath, reg.ArtifactPath(e))
	set, err := reg.Methods(e)
	require.NoError(t, err)
	assert.Equal(t, []string{"earnings"}, set.Names())
}
