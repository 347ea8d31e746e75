package contract

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Artifact is a compiled contract: its method set and creation bytecode.
type Artifact struct {
	ContractName string
	Methods      *MethodSet
	Bytecode     []byte // raw deployment bytecode (no 0x prefix)
}

// LoadMethods loads a method set from a local file that is either:
//   - a raw ABI JSON array: [{"type":"function",...}, ...]
//   - a Hardhat/Foundry artifact: {"abi":[...],"bytecode":"0x...",...}
//
// Both formats are detected automatically.
func LoadMethods(path string) (*MethodSet, error) {
	data, err := readNonEmpty(path)
	if err != nil {
		return nil, err
	}

	var artifact struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
	}
	if json.Unmarshal(data, &artifact) == nil && len(artifact.ABI) > 1 && artifact.ABI[0] == '[' {
		return ParseMethodSet(nameFor(artifact.ContractName, path), artifact.ABI)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return nil, fmt.Errorf("%s is a JSON object without an \"abi\" array: expected an ABI or a Hardhat/Foundry artifact", path)
	}
	return ParseMethodSet(nameFor("", path), data)
}

// LoadArtifact loads both the ABI and the deployment bytecode from a Hardhat
// or Foundry artifact JSON file. Interfaces and abstract contracts have no
// bytecode and are rejected.
func LoadArtifact(path string) (*Artifact, error) {
	data, err := readNonEmpty(path)
	if err != nil {
		return nil, err
	}

	var raw struct {
		ContractName string          `json:"contractName"`
		ABI          json.RawMessage `json:"abi"`
		Bytecode     json.RawMessage `json:"bytecode"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid artifact JSON: %w", err)
	}
	if len(raw.ABI) < 2 || raw.ABI[0] != '[' {
		return nil, fmt.Errorf("artifact has no valid \"abi\" array: %s", path)
	}

	name := nameFor(raw.ContractName, path)
	methods, err := parseABI(name, raw.ABI)
	if err != nil {
		return nil, err
	}

	if len(raw.Bytecode) == 0 {
		return nil, fmt.Errorf("artifact has no bytecode, cannot deploy an interface or abstract contract: %s", path)
	}
	bcHex, err := extractBytecodeHex(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("extracting bytecode from artifact: %w", err)
	}
	if bcHex == "" || bcHex == "0x" {
		return nil, fmt.Errorf("artifact bytecode is empty, cannot deploy an interface or abstract contract: %s", path)
	}
	bytecode, err := hex.DecodeString(strings.TrimPrefix(bcHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode hex in artifact: %w", err)
	}

	return &Artifact{ContractName: name, Methods: methods, Bytecode: bytecode}, nil
}

func readNonEmpty(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read ABI file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("ABI file is empty: %s", path)
	}
	return data, nil
}

// nameFor prefers the artifact's contractName and falls back to the file name.
func nameFor(contractName, path string) string {
	if contractName != "" {
		return contractName
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

// extractBytecodeHex handles the two common artifact formats:
//   - Hardhat:  "bytecode": "0x608060..."          (JSON string)
//   - Foundry:  "bytecode": {"object": "0x608060..."} (JSON object)
func extractBytecodeHex(raw json.RawMessage) (string, error) {
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return strings.TrimSpace(str), nil
	}

	var obj struct {
		Object string `json:"object"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Object != "" {
		return strings.TrimSpace(obj.Object), nil
	}

	return "", fmt.Errorf("bytecode field is neither a hex string nor a {\"object\":\"0x...\"} object")
}
