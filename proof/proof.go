// Package proof builds zero-knowledge proofs that a transfer conserved
// the token supply: the sender's debit equals the recipient's credit,
// with no balance driven below zero. Proofs use Groth16 on BN254, the
// standard curve for on-chain verification, and the verifier can be
// exported as a Solidity contract.
package proof

import (
	"fmt"
	"io"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/constraint"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"
)

// rangeBound keeps balance values inside 2^62 so field arithmetic
// cannot wrap around the curve modulus.
var rangeBound = big.NewInt(1 << 62)

// TransferCircuit constrains a single transfer. The transferred value
// is public; the surrounding balances stay private witnesses.
type TransferCircuit struct {
	Value frontend.Variable `gnark:",public"`

	FromBefore frontend.Variable
	FromAfter  frontend.Variable
	ToBefore   frontend.Variable
	ToAfter    frontend.Variable
}

// Define encodes conservation: the debit and credit both equal Value,
// and every quantity is range-checked so subtraction cannot wrap.
func (c *TransferCircuit) Define(api frontend.API) error {
	api.AssertIsLessOrEqual(c.Value, rangeBound)
	api.AssertIsLessOrEqual(c.FromBefore, rangeBound)
	api.AssertIsLessOrEqual(c.FromAfter, rangeBound)
	api.AssertIsLessOrEqual(c.ToBefore, rangeBound)
	api.AssertIsLessOrEqual(c.ToAfter, rangeBound)

	// fromBefore = fromAfter + value, so fromAfter >= 0 within range
	api.AssertIsEqual(c.FromBefore, api.Add(c.FromAfter, c.Value))
	// toAfter = toBefore + value
	api.AssertIsEqual(c.ToAfter, api.Add(c.ToBefore, c.Value))
	return nil
}

// Transfer is a concrete witness assignment for TransferCircuit.
type Transfer struct {
	Value      uint64
	FromBefore uint64
	FromAfter  uint64
	ToBefore   uint64
	ToAfter    uint64
}

// System holds a compiled circuit with its Groth16 keys.
type System struct {
	cs constraint.ConstraintSystem
	pk groth16.ProvingKey
	vk groth16.VerifyingKey
}

// NewSystem compiles the transfer circuit and runs the Groth16 setup.
func NewSystem() (*System, error) {
	var circuit TransferCircuit
	cs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, &circuit)
	if err != nil {
		return nil, fmt.Errorf("proof: circuit compilation failed: %w", err)
	}
	pk, vk, err := groth16.Setup(cs)
	if err != nil {
		return nil, fmt.Errorf("proof: setup failed: %w", err)
	}
	return &System{cs: cs, pk: pk, vk: vk}, nil
}

// Prove generates a proof that t satisfies the conservation constraints.
func (s *System) Prove(t Transfer) (groth16.Proof, error) {
	assignment := TransferCircuit{
		Value:      t.Value,
		FromBefore: t.FromBefore,
		FromAfter:  t.FromAfter,
		ToBefore:   t.ToBefore,
		ToAfter:    t.ToAfter,
	}
	witness, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField())
	if err != nil {
		return nil, fmt.Errorf("proof: witness build failed: %w", err)
	}
	return groth16.Prove(s.cs, s.pk, witness)
}

// Verify checks a proof against the public transferred value.
func (s *System) Verify(proof groth16.Proof, value uint64) error {
	assignment := TransferCircuit{Value: value}
	public, err := frontend.NewWitness(&assignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return fmt.Errorf("proof: public witness build failed: %w", err)
	}
	return groth16.Verify(proof, s.vk, public)
}

// ExportSolidity writes the Groth16 verifier as a Solidity contract.
func (s *System) ExportSolidity(w io.Writer) error {
	return s.vk.ExportSolidity(w)
}

// NbConstraints reports the compiled circuit size.
func (s *System) NbConstraints() int {
	return s.cs.GetNbConstraints()
}
