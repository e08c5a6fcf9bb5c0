package reader

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	gotacacs "github.com/vitalvas/tacacsd"
	"github.com/vitalvas/tacacsd/internal/attrs"
	"github.com/vitalvas/tacacsd/internal/machine"
	"github.com/vitalvas/tacacsd/internal/statusmap"
)

// SecretLookup resolves the shared secret for a connection's remote
// address, however the caller's configuration wants it looked up (a single
// global secret, a per-client-address table, ...).
type SecretLookup interface {
	Lookup(remoteAddr string) ([]byte, bool)
}

// Reader owns one connection's read side and assembles complete TACACS+
// packets into machine.Request values, per spec.md §4.4.
type Reader struct {
	conn   gotacacs.Conn
	secret SecretLookup
	connID machine.ConnID
	log    *zap.Logger
}

// New wraps conn for incremental packet assembly. Every Reader is assigned
// its own ConnID, resolving spec.md §9 Open Question 1 (a listener-pointer
// identity assumed pointer-stable) with a UUID stable for the connection's
// whole lifetime.
func New(conn gotacacs.Conn, secret SecretLookup, log *zap.Logger) *Reader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Reader{conn: conn, secret: secret, connID: machine.NewConnID(), log: log}
}

// ConnID returns this connection's stable identity.
func (r *Reader) ConnID() machine.ConnID { return r.connID }

// Next blocks until one complete packet arrives, decodes it, and returns a
// machine.Request ready for PhaseInit. It returns io.EOF when the peer
// closed the connection cleanly between packets; any other error marks the
// connection end-of-life (spec.md §7 "per-connection fatal errors").
//
// Go's one-goroutine-per-connection model collapses spec.md's
// positive/zero/negative return convention (retain partial state and wait
// for the next readable-socket notification) into a single blocking read:
// there is no separate "zero" case because io.ReadFull already blocks until
// enough bytes exist or the connection ends.
func (r *Reader) Next(ctx context.Context) (*machine.Request, error) {
	headerBuf := make([]byte, gotacacs.HeaderLength)
	if _, err := io.ReadFull(r.conn, headerBuf); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("reader: header read: %w", err)
	}

	var header gotacacs.Header
	if err := header.UnmarshalBinary(headerBuf); err != nil {
		return nil, fmt.Errorf("reader: header decode: %w", err)
	}

	req := &machine.Request{
		Conn:      r.connID,
		SeqNo:     header.SeqNo,
		SessionID: header.SessionID,
		Decode:    machine.DecodeOK,
	}
	req.Inbound.Add(attrs.SequenceNumber, header.SeqNo)
	req.Inbound.Add(attrs.SessionID, header.SessionID)

	if err := header.Validate(); err != nil {
		req.Decode = machine.DecodeError
		return req, nil
	}

	if header.Length > gotacacs.DefaultMaxBodyLength {
		return nil, fmt.Errorf("reader: body length %d: %w", header.Length, gotacacs.ErrBodyTooLarge)
	}

	body := make([]byte, header.Length)
	if header.Length > 0 {
		if _, err := io.ReadFull(r.conn, body); err != nil {
			return nil, fmt.Errorf("reader: body read: %w", err)
		}
	}

	secret, _ := r.secret.Lookup(r.conn.RemoteAddr().String())
	if !header.IsUnencrypted() {
		body = gotacacs.Obfuscate(&header, secret, body)
	}

	if err := r.populate(req, &header, body); err != nil {
		req.Decode = machine.DecodeError
	}
	return req, nil
}

func (r *Reader) populate(req *machine.Request, header *gotacacs.Header, body []byte) error {
	switch header.Type {
	case gotacacs.PacketTypeAuthen:
		req.Kind = statusmap.Authentication
		pkt, err := gotacacs.ParseAuthenPacket(header.SeqNo, body)
		if err != nil {
			return err
		}
		switch p := pkt.(type) {
		case *gotacacs.AuthenStart:
			req.Inbound.Add(attrs.UserName, string(p.User))
			req.Inbound.Add(attrs.ClientPort, string(p.Port))
			req.Inbound.Add(attrs.RemoteAddress, string(p.RemoteAddr))
			req.Inbound.Add(attrs.AuthenticationType, p.AuthenType)
			req.Inbound.Add(attrs.Data, p.Data)
		case *gotacacs.AuthenContinue:
			if p.Flags&gotacacs.AuthenContinueFlagAbort != 0 {
				req.Decode = machine.DecodeClientAbort
				return nil
			}
			req.Inbound.Add(attrs.UserMessage, string(p.UserMsg))
			req.Inbound.Add(attrs.Data, p.Data)
		default:
			return fmt.Errorf("reader: unexpected authentication packet type %T", pkt)
		}

	case gotacacs.PacketTypeAuthor:
		req.Kind = statusmap.Authorization
		pkt, err := gotacacs.ParseAuthorPacket(header.SeqNo, body)
		if err != nil {
			return err
		}
		p, ok := pkt.(*gotacacs.AuthorRequest)
		if !ok {
			return fmt.Errorf("reader: unexpected authorization packet type %T", pkt)
		}
		req.Inbound.Add(attrs.UserName, string(p.User))
		req.Inbound.Add(attrs.ClientPort, string(p.Port))
		req.Inbound.Add(attrs.RemoteAddress, string(p.RemoteAddr))
		req.Inbound.Add(attrs.AuthenticationType, p.AuthenType)
		req.Inbound.Add(attrs.AuthenticationMethod, p.AuthenMethod)
		req.Inbound.Add(attrs.PrivilegeLevel, p.PrivLevel)
		for _, arg := range p.Args {
			req.Inbound.Add(attrs.Arg, string(arg))
		}

	case gotacacs.PacketTypeAcct:
		req.Kind = statusmap.Accounting
		pkt, err := gotacacs.ParseAcctPacket(header.SeqNo, body)
		if err != nil {
			return err
		}
		p, ok := pkt.(*gotacacs.AcctRequest)
		if !ok {
			return fmt.Errorf("reader: unexpected accounting packet type %T", pkt)
		}
		req.Inbound.Add(attrs.UserName, string(p.User))
		req.Inbound.Add(attrs.ClientPort, string(p.Port))
		req.Inbound.Add(attrs.RemoteAddress, string(p.RemoteAddr))
		req.Inbound.Add(attrs.AccountingFlags, p.Flags)
		for _, arg := range p.Args {
			req.Inbound.Add(attrs.Arg, string(arg))
		}

	default:
		return fmt.Errorf("%w: %d", gotacacs.ErrInvalidType, header.Type)
	}

	return nil
}
