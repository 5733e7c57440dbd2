package codegen

import (
	"fmt"
	"strings"

	"github.com/flatlang/flatc/pkg/schema"
)

// messageVersionSize/messageAllocatorHeaderSize are the two fixed fields
// that sit ahead of a message's wrapped flat in the buffer: a 4-byte
// Version, then the allocator's own on-wire header (next, max — two
// Offsets). flats.Allocator's Go fields are the live, in-memory mirror of
// those same two numbers; EmitMessage's Sync method is what keeps the
// on-wire header in step with whatever the live allocator has advanced to,
// since pkg/flats never writes Next back to a buffer itself (nothing about
// advancing a bump cursor needs to touch the buffer until someone clones
// or persists it).
const (
	messageVersionSize         = 4
	messageAllocatorHeaderSize = 4
)

// EmitMessage renders the C9 envelope for `m : message of F`: a struct
// wrapping the message buffer, a Version ahead of F's own fixed part, and
// the sizing/clone/placement operations §4.6 names. The allocator header
// (and every operation that reads or writes it) is only emitted when F
// itself needs an allocator — per SPEC_FULL.md's resolution of spec.md
// §4.6's `Allocator alloc?`, a body with no tail-growing field never has
// a tail to track, so there's nothing for the on-wire {next, max} pair to
// record.
func EmitMessage(table *schema.Table, msg *schema.Flat) string {
	body := table.Flat(msg.Underlying)
	bodyFixedSize := body.FixedSize
	hasAllo := needsAllocator(table, body)

	allocatorHeaderSize := 0
	if hasAllo {
		allocatorHeaderSize = messageAllocatorHeaderSize
	}
	bodyOffset := messageVersionSize + allocatorHeaderSize

	var b strings.Builder
	if hasAllo {
		fmt.Fprintf(&b, "// %s is the message envelope for %q: {Version, Allocator header, %s}\n", msg.Name, body.Name, body.Name)
	} else {
		fmt.Fprintf(&b, "// %s is the message envelope for %q: {Version, %s}. %s has no\n", msg.Name, body.Name, body.Name, body.Name)
		fmt.Fprintf(&b, "// tail-growing field, so there's no tail and no {next, max} header;\n// the two parts are\n")
	}
	fmt.Fprintf(&b, "// laid out contiguously in buf starting at offset 0.\n")
	fmt.Fprintf(&b, "const (\n")
	fmt.Fprintf(&b, "\t%s_VersionOffset   = 0\n", msg.Name)
	if hasAllo {
		fmt.Fprintf(&b, "\t%s_AllocatorOffset = %d\n", msg.Name, messageVersionSize)
	}
	fmt.Fprintf(&b, "\t%s_BodyOffset      = %d\n", msg.Name, bodyOffset)
	fmt.Fprintf(&b, ")\n\n")

	if hasAllo {
		fmt.Fprintf(&b, "type %s struct {\n\tbuf  []byte\n\tallo *flats.Allocator\n}\n\n", msg.Name)
	} else {
		fmt.Fprintf(&b, "type %s struct {\n\tbuf []byte\n}\n\n", msg.Name)
	}

	fmt.Fprintf(&b, "// Version reports the field count %s's schema had at generation time.\n", body.Name)
	fmt.Fprintf(&b, "func (m %s) Version() int32 {\n", msg.Name)
	fmt.Fprintf(&b, "\treturn flats.SpanOver[int32](m.buf[%s_VersionOffset:], 1).Slice()[0]\n}\n\n", msg.Name)

	fmt.Fprintf(&b, "// Direct returns %s's direct accessor over the wrapped flat body.\n", body.Name)
	if hasAllo {
		fmt.Fprintf(&b, "func (m %s) Direct() %s_direct {\n", msg.Name, body.Name)
		fmt.Fprintf(&b, "\treturn New%s_direct(m.buf, %s_BodyOffset, m.allo)\n}\n\n", body.Name, msg.Name)
	} else {
		fmt.Fprintf(&b, "func (m %s) Direct() %s_direct {\n", msg.Name, body.Name)
		fmt.Fprintf(&b, "\treturn New%s_direct(m.buf, %s_BodyOffset)\n}\n\n", body.Name, msg.Name)
	}

	fmt.Fprintf(&b, "// CurrentSize is the number of buf bytes the message currently occupies:\n")
	if hasAllo {
		fmt.Fprintf(&b, "// the fixed envelope plus however far the tail has grown.\n")
		fmt.Fprintf(&b, "func (m %s) CurrentSize() int {\n\treturn int(m.allo.Next)\n}\n\n", msg.Name)
		fmt.Fprintf(&b, "// CurrentCapacity is how many more tail bytes can still be allocated.\n")
		fmt.Fprintf(&b, "func (m %s) CurrentCapacity() flats.Size {\n\treturn m.allo.Capacity()\n}\n\n", msg.Name)
	} else {
		fmt.Fprintf(&b, "// %s has no tail, so this is always the fixed envelope size.\n", body.Name)
		fmt.Fprintf(&b, "func (m %s) CurrentSize() int {\n\treturn %s_BodyOffset + %d\n}\n\n", msg.Name, msg.Name, bodyFixedSize)
		fmt.Fprintf(&b, "// CurrentCapacity is always zero: %s has no tail-growing field.\n", body.Name)
		fmt.Fprintf(&b, "func (m %s) CurrentCapacity() flats.Size {\n\treturn 0\n}\n\n", msg.Name)
	}

	if hasAllo {
		fmt.Fprintf(&b, "// Sync writes the live allocator's cursor back into the on-wire header,\n")
		fmt.Fprintf(&b, "// so a byte-for-byte clone or persisted buffer carries the true tail\n")
		fmt.Fprintf(&b, "// extent rather than whatever it held when the message was last placed.\n")
		fmt.Fprintf(&b, "func (m %s) Sync() {\n", msg.Name)
		fmt.Fprintf(&b, "\tflats.SpanOver[flats.Offset](m.buf[%s_AllocatorOffset:], 1).Set(0, m.allo.Next)\n", msg.Name)
		fmt.Fprintf(&b, "\tflats.SpanOver[flats.Offset](m.buf[%s_AllocatorOffset+2:], 1).Set(0, m.allo.Max)\n}\n\n", msg.Name)
	}

	fmt.Fprintf(&b, "// Clone copies exactly CurrentSize bytes of the message into dest.\n")
	fmt.Fprintf(&b, "func (m %s) Clone(dest []byte) (%s, error) {\n", msg.Name, msg.Name)
	if hasAllo {
		fmt.Fprintf(&b, "\tm.Sync()\n\tn := m.CurrentSize()\n")
	} else {
		fmt.Fprintf(&b, "\tn := m.CurrentSize()\n")
	}
	fmt.Fprintf(&b, "\tif err := flats.ExpectDefault(func() bool { return len(dest) >= n }, flats.SmallBuffer); err != nil {\n\t\treturn %s{}, err\n\t}\n", msg.Name)
	fmt.Fprintf(&b, "\tcopy(dest, m.buf[:n])\n")
	fmt.Fprintf(&b, "\treturn Place%sReader(dest, n)\n}\n\n", msg.Name)

	fmt.Fprintf(&b, "// Place%s builds a fresh %s over buf, initialising the Version", msg.Name, msg.Name)
	if hasAllo {
		fmt.Fprintf(&b, " and\n// allocator header for a writer: the tail starts right after %s's\n", body.Name)
		fmt.Fprintf(&b, "// fixed part and may grow up to tailSize further bytes.\n")
	} else {
		fmt.Fprintf(&b, " header.\n// %s has no tail-growing field, so tailSize is ignored.\n", body.Name)
	}
	fmt.Fprintf(&b, "func Place%s(buf []byte, bufSize, tailSize int) (%s, error) {\n", msg.Name, msg.Name)
	if hasAllo {
		fmt.Fprintf(&b, "\tbodyEnd := %s_BodyOffset + %d\n", msg.Name, bodyFixedSize)
		fmt.Fprintf(&b, "\tif err := flats.ExpectDefault(func() bool { return bodyEnd+tailSize <= bufSize }, flats.SmallBuffer); err != nil {\n\t\treturn %s{}, err\n\t}\n", msg.Name)
		fmt.Fprintf(&b, "\tflats.SpanOver[int32](buf[%s_VersionOffset:], 1).Set(0, int32(%d))\n", msg.Name, body.NextIndex())
		fmt.Fprintf(&b, "\tallo := flats.NewAllocator(buf, %s_BodyOffset, bodyEnd, bodyEnd+tailSize)\n", msg.Name)
		fmt.Fprintf(&b, "\tm := %s{buf: buf, allo: allo}\n\tm.Sync()\n\treturn m, nil\n}\n\n", msg.Name)
	} else {
		fmt.Fprintf(&b, "\tbodyEnd := %s_BodyOffset + %d\n", msg.Name, bodyFixedSize)
		fmt.Fprintf(&b, "\tif err := flats.ExpectDefault(func() bool { return bodyEnd <= bufSize }, flats.SmallBuffer); err != nil {\n\t\treturn %s{}, err\n\t}\n", msg.Name)
		fmt.Fprintf(&b, "\tflats.SpanOver[int32](buf[%s_VersionOffset:], 1).Set(0, int32(%d))\n", msg.Name, body.NextIndex())
		fmt.Fprintf(&b, "\treturn %s{buf: buf}, nil\n}\n\n", msg.Name)
	}

	fmt.Fprintf(&b, "// Place%sReader wraps an existing buf of n bytes for reading", msg.Name)
	if hasAllo {
		fmt.Fprintf(&b, ", rebuilding\n// the allocator from the on-wire header %s already carries.\n", msg.Name)
	} else {
		fmt.Fprintf(&b, ".\n")
	}
	fmt.Fprintf(&b, "func Place%sReader(buf []byte, n int) (%s, error) {\n", msg.Name, msg.Name)
	fmt.Fprintf(&b, "\tif err := flats.ExpectDefault(func() bool { return n >= %s_BodyOffset+%d }, flats.SmallBuffer); err != nil {\n\t\treturn %s{}, err\n\t}\n", msg.Name, bodyFixedSize, msg.Name)
	if hasAllo {
		fmt.Fprintf(&b, "\tnext := flats.SpanOver[flats.Offset](buf[%s_AllocatorOffset:], 1).Slice()[0]\n", msg.Name)
		fmt.Fprintf(&b, "\tmax := flats.SpanOver[flats.Offset](buf[%s_AllocatorOffset+2:], 1).Slice()[0]\n", msg.Name)
		fmt.Fprintf(&b, "\tallo := flats.NewAllocator(buf, %s_BodyOffset, int(next), int(max))\n", msg.Name)
		fmt.Fprintf(&b, "\treturn %s{buf: buf, allo: allo}, nil\n}\n\n", msg.Name)
	} else {
		fmt.Fprintf(&b, "\treturn %s{buf: buf}, nil\n}\n\n", msg.Name)
	}

	return b.String()
}
