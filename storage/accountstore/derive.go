package accountstore

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Deriver computes deterministic account addresses under a program id.
type Deriver struct {
	programID solana.PublicKey
}

func NewDeriver(programID solana.PublicKey) Deriver {
	return Deriver{programID: programID}
}

func (d Deriver) ProgramID() solana.PublicKey {
	return d.programID
}

// Derive returns the program address for seeds and its bump.
func (d Deriver) Derive(seeds ...[]byte) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive address: %w", err)
	}
	return addr, bump, nil
}

// Int32Seed encodes v big-endian, the byte order used for index seeds.
func Int32Seed(v int32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, uint32(v))
	return b
}
