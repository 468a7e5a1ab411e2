package engine

import (
	"encoding/pem"
	"strings"
)

type BlockKind int

const (
	BlockUnknown BlockKind = iota
	BlockCertificate
	BlockPrivateKey
	BlockCRL
)

const (
	beginMarker = "-----BEGIN "
	endMarker   = "-----END "
	dashes      = "-----"
)

// Block is one delimited PEM block. DER is nil when the block body failed
// base64 decoding; Raw always carries the full delimited text verbatim so
// the offending content can be echoed back to the user.
type Block struct {
	Kind BlockKind
	Raw  string
	DER  []byte
}

func (b Block) Malformed() bool {
	return b.DER == nil
}

// DecodeBlocks splits raw bytes into typed PEM blocks, in input order.
// Text outside BEGIN/END delimiters is ignored. Unlike pem.Decode, a block
// whose body does not decode is kept (as malformed) instead of skipped.
func DecodeBlocks(data []byte) []Block {
	var blocks []Block
	text := string(data)
	for {
		begin := strings.Index(text, beginMarker)
		if begin < 0 {
			return blocks
		}
		labelRest := text[begin+len(beginMarker):]
		labelEnd := strings.Index(labelRest, dashes)
		if labelEnd < 0 {
			return blocks
		}
		label := labelRest[:labelEnd]
		closing := endMarker + label + dashes
		end := strings.Index(text[begin:], closing)
		if end < 0 {
			// unterminated block, keep the remainder as malformed
			blocks = append(blocks, Block{Kind: kindFromLabel(label), Raw: strings.TrimSpace(text[begin:])})
			return blocks
		}
		raw := text[begin : begin+end+len(closing)]
		text = text[begin+end+len(closing):]

		block := Block{Kind: kindFromLabel(label), Raw: raw}
		if decoded, _ := pem.Decode([]byte(raw)); decoded != nil {
			block.DER = decoded.Bytes
		}
		blocks = append(blocks, block)
	}
}

func kindFromLabel(label string) BlockKind {
	switch {
	case label == "CERTIFICATE":
		return BlockCertificate
	case label == "X509 CRL":
		return BlockCRL
	case strings.HasSuffix(label, "PRIVATE KEY"):
		return BlockPrivateKey
	}
	return BlockUnknown
}
