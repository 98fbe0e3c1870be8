// Package x86scan is a small example consumer sitting on top of an
// addrmap.AddressMap[uint64,byte], the same relationship cmd/bin2asm and
// cmd/bin2ll have to decomp/exp/bin: it walks a mapped, executable region one
// x86 instruction at a time. It never disassembles beyond instruction
// boundaries — no control-flow graph, no lifting.
package x86scan

import (
	"fmt"

	"github.com/mdheller/addrmap"
	"github.com/mdheller/addrmap/access"
	"github.com/pkg/errors"
	"golang.org/x/arch/x86/x86asm"
)

// decodeRegion reads the Executable-accessible bytes c matches and decodes
// them one x86 instruction at a time, calling handle with each instruction's
// address and decode. It stops at the first address x86asm.Decode can't make
// sense of, returning an error identifying the offending address, mirroring
// the "recoverable partial scan" behavior cmd/bin2asm's own disassembly pass
// relies on.
func decodeRegion(m *addrmap.AddressMap[uint64, byte], c *addrmap.Constraints[uint64, byte], mode int, handle func(addr uint64, inst x86asm.Inst)) error {
	region := c.Require(access.Executable).Available(0)
	if region.IsEmpty() {
		return nil
	}

	size, overflowed := region.Size()
	if overflowed {
		return errors.New("x86scan: region spans the whole address space")
	}
	code := make([]byte, size)
	if m.Within(region).Require(access.Executable).Read(code, 0).IsEmpty() {
		return nil
	}

	base := region.Least()
	for offset := 0; offset < len(code); {
		inst, err := x86asm.Decode(code[offset:], mode)
		if err != nil {
			return errors.Wrapf(err, "x86scan: decode failed at %#x", base+uint64(offset))
		}
		if inst.Len == 0 {
			return errors.Errorf("x86scan: zero-length instruction at %#x", base+uint64(offset))
		}
		handle(base+uint64(offset), inst)
		offset += inst.Len
	}
	return nil
}

// Boundaries walks the region c matches (narrowed to require Executable
// access) and returns the address of every instruction it finds, in
// ascending order. mode is the decode width in bits (16, 32, or 64; see
// x86asm.Decode). On a decode failure partway through, it returns the
// instructions found up to that point along with the error.
func Boundaries(m *addrmap.AddressMap[uint64, byte], c *addrmap.Constraints[uint64, byte], mode int) ([]uint64, error) {
	var bounds []uint64
	err := decodeRegion(m, c, mode, func(addr uint64, _ x86asm.Inst) {
		bounds = append(bounds, addr)
	})
	return bounds, err
}

// Disassemble is Boundaries followed by rendering each instruction with
// x86asm.IntelSyntax, for diagnostics (e.g. an interactive dump, mirroring
// cmd/bin2asm/sections.go's own use of IntelSyntax).
func Disassemble(m *addrmap.AddressMap[uint64, byte], c *addrmap.Constraints[uint64, byte], mode int) ([]string, error) {
	var lines []string
	err := decodeRegion(m, c, mode, func(addr uint64, inst x86asm.Inst) {
		lines = append(lines, fmt.Sprintf("%#08x: %s", addr, x86asm.IntelSyntax(inst, addr, nil)))
	})
	return lines, err
}
