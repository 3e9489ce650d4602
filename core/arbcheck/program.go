// Package arbcheck builds instructions for the on-chain profit guard
// program and models its state machine. The program exposes two methods,
// save_balance and check_profit, which bracket the swap inside one atomic
// transaction: the first snapshots the monitored token balance into a
// per-user state account, the second fails the whole transaction unless the
// realized gain covers min_profit.
package arbcheck

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// StateSeed is the fixed PDA seed prefix for the per-user state account.
const StateSeed = "state"

var (
	saveBalanceDiscriminator = anchorDiscriminator("save_balance")
	checkProfitDiscriminator = anchorDiscriminator("check_profit")
)

func anchorDiscriminator(method string) []byte {
	sum := sha256.Sum256([]byte("global:" + method))
	return sum[:8]
}

// Program addresses instruction builders at one deployed guard program.
type Program struct {
	ID solana.PublicKey
}

// StatePDA derives the per-user state account address.
func (p Program) StatePDA(user solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress(
		[][]byte{[]byte(StateSeed), user.Bytes()},
		p.ID,
	)
	return addr, err
}

// SaveBalanceInstruction snapshots the user's current balance of the
// monitored token into the state PDA, creating the account if absent.
// Account order matches the on-chain accounts struct.
func (p Program) SaveBalanceInstruction(user, tokenAccount, mint solana.PublicKey) (solana.Instruction, error) {
	state, err := p.StatePDA(user)
	if err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.Meta(user).WRITE().SIGNER(),
		solana.Meta(tokenAccount).WRITE(),
		solana.Meta(mint),
		solana.Meta(state).WRITE(),
		solana.Meta(solana.SystemProgramID),
	}

	return solana.NewInstruction(p.ID, metas, saveBalanceDiscriminator), nil
}

// CheckProfitInstruction asserts current − saved ≥ minProfit, with the
// subtraction checked on chain. Args are borsh encoded.
func (p Program) CheckProfitInstruction(user, tokenAccount, mint solana.PublicKey, minProfit uint64) (solana.Instruction, error) {
	state, err := p.StatePDA(user)
	if err != nil {
		return nil, err
	}

	buf := new(bytes.Buffer)
	buf.Write(checkProfitDiscriminator)
	if err := bin.NewBorshEncoder(buf).WriteUint64(minProfit, binary.LittleEndian); err != nil {
		return nil, err
	}

	metas := solana.AccountMetaSlice{
		solana.Meta(user).WRITE().SIGNER(),
		solana.Meta(tokenAccount).WRITE(),
		solana.Meta(mint),
		solana.Meta(state).WRITE(),
	}

	return solana.NewInstruction(p.ID, metas, buf.Bytes()), nil
}
