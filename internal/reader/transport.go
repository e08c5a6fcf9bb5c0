package reader

import (
	"context"
	"fmt"

	gotacacs "github.com/vitalvas/tacacsd"
	"github.com/vitalvas/tacacsd/internal/attrs"
	"github.com/vitalvas/tacacsd/internal/machine"
	"github.com/vitalvas/tacacsd/internal/statusmap"
)

// authenStatusCodes maps the string statuses statusmap/policy write into
// req.Reply back onto the wire's numeric AuthenticationStatus codes.
var authenStatusCodes = map[string]uint8{
	"Pass":     gotacacs.AuthenStatusPass,
	"Fail":     gotacacs.AuthenStatusFail,
	"GetData":  gotacacs.AuthenStatusGetData,
	"GetUser":  gotacacs.AuthenStatusGetUser,
	"GetPass":  gotacacs.AuthenStatusGetPass,
	"RESTART":  gotacacs.AuthenStatusRestart,
	"Error":    gotacacs.AuthenStatusError,
	"FOLLOW":   gotacacs.AuthenStatusFollow,
}

var authorStatusCodes = map[string]uint8{
	"Pass-Repl": gotacacs.AuthorStatusPassRepl,
	"Pass-Add":  gotacacs.AuthorStatusPassAdd,
	"Fail":      gotacacs.AuthorStatusFail,
	"Error":     gotacacs.AuthorStatusError,
}

var acctStatusCodes = map[string]uint8{
	"Success": gotacacs.AcctStatusSuccess,
	"Error":   gotacacs.AcctStatusError,
}

// Transport implements machine.Transport by encoding req.Reply into the
// wire packet type matching req.Kind and writing it, obfuscated, to conn.
type Transport struct {
	conn   gotacacs.Conn
	secret SecretLookup
}

// NewTransport builds a Transport writing replies to conn.
func NewTransport(conn gotacacs.Conn, secret SecretLookup) *Transport {
	return &Transport{conn: conn, secret: secret}
}

var _ machine.Transport = (*Transport)(nil)

// Send implements machine.Transport.
func (t *Transport) Send(ctx context.Context, req *machine.Request) error {
	var body gotacacs.Packet
	var packetType uint8

	switch req.Kind {
	case statusmap.Authentication:
		status, _ := req.Reply.GetString(attrs.AuthenticationStatus)
		reply := gotacacs.NewAuthenReply(authenStatusCodes[status])
		if msg, ok := req.Reply.GetString(attrs.ServerMessage); ok {
			reply.ServerMsg = []byte(msg)
		}
		if data, ok := req.Reply.GetBytes(attrs.Data); ok {
			reply.Data = data
		}
		body, packetType = reply, gotacacs.PacketTypeAuthen

	case statusmap.Authorization:
		status, _ := req.Reply.GetString(attrs.AuthorizationStatus)
		reply := gotacacs.NewAuthorResponse(authorStatusCodes[status])
		if msg, ok := req.Reply.GetString(attrs.ServerMessage); ok {
			reply.ServerMsg = []byte(msg)
		}
		for _, arg := range req.Reply.All(attrs.Arg) {
			if s, ok := arg.Value.(string); ok {
				reply.AddArg(s)
			}
		}
		body, packetType = reply, gotacacs.PacketTypeAuthor

	case statusmap.Accounting:
		status, _ := req.Reply.GetString(attrs.AccountingStatus)
		reply := gotacacs.NewAcctReply(acctStatusCodes[status])
		if msg, ok := req.Reply.GetString(attrs.ServerMessage); ok {
			reply.ServerMsg = []byte(msg)
		}
		body, packetType = reply, gotacacs.PacketTypeAcct

	default:
		return fmt.Errorf("reader: unknown packet kind %v", req.Kind)
	}

	payload, err := body.MarshalBinary()
	if err != nil {
		return fmt.Errorf("reader: encode reply: %w", err)
	}

	header := gotacacs.NewHeader(packetType, req.SessionID)
	header.SeqNo = req.SeqNo + 1
	header.Length = uint32(len(payload))

	secret, _ := t.secret.Lookup(t.conn.RemoteAddr().String())
	if len(secret) > 0 {
		payload = gotacacs.Obfuscate(header, secret, payload)
	} else {
		header.SetUnencrypted(true)
	}

	headerBytes, err := header.MarshalBinary()
	if err != nil {
		return fmt.Errorf("reader: encode header: %w", err)
	}

	if _, err := t.conn.Write(append(headerBytes, payload...)); err != nil {
		return fmt.Errorf("reader: write reply: %w", err)
	}
	return nil
}
