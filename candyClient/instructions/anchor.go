package instructions

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
)

// Anchor method names of the candy machine program.
const (
	MethodInitializeConfig       = "initialize_config"
	MethodAddConfigLines         = "add_config_lines"
	MethodInitializeCandyMachine = "initialize_candy_machine"
	MethodMintNFT                = "mint_nft"
	MethodUpdateCandyMachine     = "update_candy_machine"
)

// Discriminator returns the 8-byte Anchor selector of a global method.
func Discriminator(method string) [8]byte {
	sum := sha256.Sum256([]byte("global:" + method))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// payload builds a Borsh-encoded Anchor instruction body. The first encoder
// error sticks and is reported by bytes.
type payload struct {
	buf bytes.Buffer
	enc *bin.Encoder
	err error
}

func newPayload(method string) *payload {
	p := &payload{}
	p.enc = bin.NewBorshEncoder(&p.buf)
	disc := Discriminator(method)
	p.raw(disc[:])
	return p
}

func (p *payload) do(fn func() error) *payload {
	if p.err == nil {
		p.err = fn()
	}
	return p
}

func (p *payload) raw(b []byte) *payload {
	return p.do(func() error { return p.enc.WriteBytes(b, false) })
}

func (p *payload) u8(v uint8) *payload {
	return p.do(func() error { return p.enc.WriteUint8(v) })
}

func (p *payload) u16(v uint16) *payload {
	return p.do(func() error { return p.enc.WriteUint16(v, binary.LittleEndian) })
}

func (p *payload) u32(v uint32) *payload {
	return p.do(func() error { return p.enc.WriteUint32(v, binary.LittleEndian) })
}

func (p *payload) u64(v uint64) *payload {
	return p.do(func() error { return p.enc.WriteUint64(v, binary.LittleEndian) })
}

func (p *payload) i64(v int64) *payload {
	return p.do(func() error { return p.enc.WriteInt64(v, binary.LittleEndian) })
}

func (p *payload) boolean(v bool) *payload {
	return p.do(func() error { return p.enc.WriteBool(v) })
}

// str writes a Borsh string: u32 length then the raw bytes.
func (p *payload) str(s string) *payload {
	return p.u32(uint32(len(s))).raw([]byte(s))
}

func (p *payload) pubkey(k solana.PublicKey) *payload {
	return p.raw(k[:])
}

func (p *payload) optU64(v *uint64) *payload {
	if v == nil {
		return p.boolean(false)
	}
	return p.boolean(true).u64(*v)
}

func (p *payload) optI64(v *int64) *payload {
	if v == nil {
		return p.boolean(false)
	}
	return p.boolean(true).i64(*v)
}

func (p *payload) bytes() ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.buf.Bytes(), nil
}
