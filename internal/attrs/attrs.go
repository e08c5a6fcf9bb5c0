package attrs

// Well-known attribute names the core depends on (spec.md §6 "Attributes
// consumed/produced"), mirroring the dictionary names FreeRADIUS's
// proto_tacacs.c autoloads (attr_auth_type, attr_state, attr_tacacs_*).
const (
	AuthType                 = "Auth-Type"
	State                    = "State"
	PacketType               = "TACACS-Packet-Type"
	SequenceNumber           = "TACACS-Sequence-Number"
	SessionID                = "TACACS-Session-Id"
	AuthenticationStatus     = "TACACS-Authentication-Status"
	AuthenticationType       = "TACACS-Authentication-Type"
	AuthenticationMethod     = "TACACS-Authentication-Method"
	AuthorizationStatus      = "TACACS-Authorization-Status"
	AccountingStatus         = "TACACS-Accounting-Status"
	AccountingFlags          = "TACACS-Accounting-Flags"
	UserName                 = "TACACS-User-Name"
	ClientPort               = "TACACS-Client-Port"
	RemoteAddress            = "TACACS-Remote-Address"
	ServerMessage            = "TACACS-Server-Message"
	Data                     = "TACACS-Data"
	PrivilegeLevel           = "TACACS-Privilege-Level"
	UserMessage              = "TACACS-User-Message"
	Arg                      = "TACACS-Arg"
)

// AuthType enum sentinels, short-circuited by the SessionMachine before any
// dictionary alias lookup (spec.md §4.3 "AuthType resolution").
const (
	AuthTypeAccept = "Accept"
	AuthTypeReject = "Reject"
)

// Pair is a single name/value attribute.
type Pair struct {
	Name  string
	Value any
}

// List is an ordered collection of attributes. Order matters for wire
// encoding and for "keep the first, warn on extras" semantics (spec.md
// §4.3).
type List []Pair

// All returns every pair with the given name, in list order.
func (l List) All(name string) []Pair {
	var out []Pair
	for _, p := range l {
		if p.Name == name {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the first pair with the given name.
func (l List) Get(name string) (Pair, bool) {
	for _, p := range l {
		if p.Name == name {
			return p, true
		}
	}
	return Pair{}, false
}

// GetString returns the string value of the first pair with the given name.
func (l List) GetString(name string) (string, bool) {
	p, ok := l.Get(name)
	if !ok {
		return "", false
	}
	s, ok := p.Value.(string)
	return s, ok
}

// GetBytes returns the []byte value of the first pair with the given name.
func (l List) GetBytes(name string) ([]byte, bool) {
	p, ok := l.Get(name)
	if !ok {
		return nil, false
	}
	b, ok := p.Value.([]byte)
	return b, ok
}

// Add appends a pair, never replacing an existing one.
func (l *List) Add(name string, value any) {
	*l = append(*l, Pair{Name: name, Value: value})
}

// Replace removes every existing pair with name and appends a single new one.
func (l *List) Replace(name string, value any) {
	l.DeleteAll(name)
	l.Add(name, value)
}

// DeleteAll removes every pair with the given name.
func (l *List) DeleteAll(name string) {
	out := (*l)[:0]
	for _, p := range *l {
		if p.Name != name {
			out = append(out, p)
		}
	}
	*l = out
}

// Clone returns a shallow copy safe to mutate independently of l.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}
