// Package config loads and validates the run inputs: the deployer address,
// the contract bytecode record and the pattern list. Everything here is
// startup-fatal on error; the search core only ever sees validated values.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vaultedge/salthunter/pkg/create2"
	"github.com/vaultedge/salthunter/pkg/search"
)

// Bytecode mirrors the bytecode JSON record produced by the build pipeline.
// Either the bytecode itself or its precomputed hash must be present.
type Bytecode struct {
	ContractName string `json:"contractName"`
	Bytecode     string `json:"bytecode"`
	BytecodeHash string `json:"bytecodeHash"`
}

// ParseDeployer validates and parses a 0x-prefixed 20-byte address string.
func ParseDeployer(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("malformed deployer address %q", s)
	}
	return common.HexToAddress(s), nil
}

// LoadBytecode reads a bytecode JSON record from disk.
func LoadBytecode(path string) (Bytecode, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bytecode{}, fmt.Errorf("read bytecode file: %w", err)
	}
	var bc Bytecode
	if err := json.Unmarshal(data, &bc); err != nil {
		return Bytecode{}, fmt.Errorf("parse bytecode file %s: %w", path, err)
	}
	return bc, nil
}

// CodeHash resolves the init code hash: the precomputed hash from the record
// when present, otherwise keccak256 of the bytecode. Called once at startup;
// the hash is never recomputed afterwards.
func (b Bytecode) CodeHash() (common.Hash, error) {
	if b.BytecodeHash != "" {
		raw, err := hexutil.Decode(normalizeHex(b.BytecodeHash))
		if err != nil || len(raw) != common.HashLength {
			return common.Hash{}, fmt.Errorf("unparsable bytecode hash %q", b.BytecodeHash)
		}
		return common.BytesToHash(raw), nil
	}
	if b.Bytecode == "" {
		return common.Hash{}, fmt.Errorf("bytecode record has neither bytecode nor hash")
	}
	initCode, err := hexutil.Decode(normalizeHex(b.Bytecode))
	if err != nil {
		return common.Hash{}, fmt.Errorf("unparsable bytecode: %w", err)
	}
	return create2.CodeHashFromInitCode(initCode), nil
}

// normalizeHex tolerates hex strings written without the 0x prefix.
func normalizeHex(s string) string {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return s
	}
	return "0x" + s
}

// LoadPatterns reads the pattern list: a JSON array of {type, value} objects.
func LoadPatterns(path string) ([]search.PatternSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns file: %w", err)
	}
	var specs []search.PatternSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("parse patterns file %s: %w", path, err)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("patterns file %s contains no patterns", path)
	}
	return specs, nil
}
