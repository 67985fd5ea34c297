package session

// State is the wallet connection state.
type State string

const (
	Disconnected State = "disconnected"
	Connecting   State = "connecting"
	Connected    State = "connected"
)

// Snapshot is a consistent view of the session. Address and ChainID are set
// only while Connected. WrongNetwork is the non-fatal warning raised when the
// wallet sits on a chain other than the target network.
type Snapshot struct {
	Address      string `json:"address,omitempty"`
	ChainID      uint64 `json:"chainId,omitempty"`
	State        State  `json:"state"`
	IsConnected  bool   `json:"isConnected"`
	IsConnecting bool   `json:"isConnecting"`
	WrongNetwork bool   `json:"wrongNetwork"`
}

// TxResult identifies a transfer the wallet accepted.
type TxResult struct {
	Hash string `json:"hash"`
	To   string `json:"to"`
	// Amount is the ether amount as requested; Wei the converted value.
	Amount string `json:"amount"`
	Wei    string `json:"wei"`
}
