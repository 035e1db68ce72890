// Package create2 implements CREATE2 address derivation for contracts deployed
// through the CreateX factory, including the factory's salt-guarding transform.
// The derivation is a faithful reimplementation of the on-chain logic: getting
// a single byte wrong here means the mined salts produce addresses that never
// match a real deployment.
package create2

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// FactoryAddress is the canonical CreateX factory address. The factory is
// deployed at the same address on every supported chain, so it is a constant
// of the derivation rather than part of the configuration.
var FactoryAddress = common.HexToAddress("0xba5Ed099633D3B313e4D5F7bdc1305d3c28ba5Ed")

// EntropySize is the number of random salt bytes left to search over after the
// deployer address and the guard flag claim the first 21 bytes.
const EntropySize = 11

// guardArgs is the ABI tuple (address, bytes32) the factory hashes when it
// guards a deployer-owned salt.
var (
	addressType = mustNewType("address")
	bytes32Type = mustNewType("bytes32")
	guardArgs   = abi.Arguments{{Type: addressType}, {Type: bytes32Type}}
)

func mustNewType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

// Context carries the fixed inputs of the derivation: who deploys, what is
// deployed, and through which factory. It is immutable for the whole run.
type Context struct {
	Deployer common.Address // The address that will call the factory
	CodeHash common.Hash    // keccak256 of the contract's init code
	Factory  common.Address // The CreateX factory address
}

// NewContext builds a derivation context for the given deployer and init code
// hash, pinned to the canonical CreateX factory.
func NewContext(deployer common.Address, codeHash common.Hash) Context {
	return Context{
		Deployer: deployer,
		CodeHash: codeHash,
		Factory:  FactoryAddress,
	}
}

// CodeHashFromInitCode hashes a contract's initialization bytecode. Computed
// once at startup; the hash never changes during a run.
func CodeHashFromInitCode(initCode []byte) common.Hash {
	return crypto.Keccak256Hash(initCode)
}

// GuardedSalt assembles a deployer-owned candidate salt from 11 bytes of
// search entropy:
//
//	bytes [0:20]  deployer address (the salt is "owned" by the deployer)
//	byte  [20]    0x00 (cross-chain redeploy protection disabled)
//	bytes [21:32] search entropy
//
// Only the trailing 11 bytes vary between attempts, which fixes the effective
// search space at 2^88 candidates.
func (c Context) GuardedSalt(entropy [EntropySize]byte) common.Hash {
	var salt common.Hash
	copy(salt[:20], c.Deployer.Bytes())
	salt[20] = 0x00
	copy(salt[21:], entropy[:])
	return salt
}

// EffectiveSalt applies the CreateX salt-guarding transform. When the first 20
// bytes of the salt equal the deployer and the 21st byte is zero, the factory
// replaces the salt with keccak256(abi.encode(deployer, salt)) before the
// CREATE2 hash; any other salt shape passes through unchanged.
//
// Every salt built by GuardedSalt satisfies the condition, but the check is
// still performed generically to stay bit-exact with the on-chain logic.
func (c Context) EffectiveSalt(salt common.Hash) common.Hash {
	if common.BytesToAddress(salt[:20]) == c.Deployer && salt[20] == 0 {
		encoded, err := guardArgs.Pack(c.Deployer, [32]byte(salt))
		if err != nil {
			// Static argument list over fixed-size types; Pack cannot fail.
			panic(err)
		}
		return crypto.Keccak256Hash(encoded)
	}
	return salt
}

// DeriveAddress computes the contract address the factory would deploy to for
// the given candidate salt: the last 20 bytes of
// keccak256(0xff ‖ factory ‖ effectiveSalt ‖ codeHash).
//
// Pure function of (Context, salt) with no failure modes; cost is two keccak
// computations.
func (c Context) DeriveAddress(salt common.Hash) common.Address {
	guarded := c.EffectiveSalt(salt)
	return crypto.CreateAddress2(c.Factory, [32]byte(guarded), c.CodeHash.Bytes())
}
