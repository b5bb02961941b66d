package contract

import (
	"github.com/jacentio/nameservice/coin"
)

// InstantiateMsg sets the registry prices.
type InstantiateMsg struct {
	RegistrationPrice *coin.Coin `json:"registration_price,omitempty"`
	TransferPrice     *coin.Coin `json:"transfer_price,omitempty"`
}

// ExecuteMsg is a state-changing request. Exactly one field must be set:
//
//	{"register": {"name": "alice"}}
//	{"transfer": {"name": "alice", "to": "addr"}}
type ExecuteMsg struct {
	Register *RegisterMsg `json:"register,omitempty"`
	Transfer *TransferMsg `json:"transfer,omitempty"`
}

// RegisterMsg claims Name for the sender.
type RegisterMsg struct {
	Name string `json:"name"`
}

// TransferMsg hands Name to To.
type TransferMsg struct {
	Name string `json:"name"`
	To   string `json:"to"`
}

// QueryMsg is a read-only request. Exactly one field must be set:
//
//	{"resolve_record": {"name": "alice"}}
//	{"config": {}}
type QueryMsg struct {
	ResolveRecord *ResolveRecordQuery `json:"resolve_record,omitempty"`
	Config        *ConfigQuery        `json:"config,omitempty"`
}

// ResolveRecordQuery asks for the owner of Name.
type ResolveRecordQuery struct {
	Name string `json:"name"`
}

// ConfigQuery asks for the registry prices.
type ConfigQuery struct{}

// ResolveRecordResponse carries the owner, or null when the name is free.
type ResolveRecordResponse struct {
	Address *string `json:"address"`
}

// ConfigResponse carries the registry prices.
type ConfigResponse struct {
	RegistrationPrice *coin.Coin `json:"registration_price,omitempty"`
	TransferPrice     *coin.Coin `json:"transfer_price,omitempty"`
}

// MessageInfo is supplied by the execution environment, not the message body.
type MessageInfo struct {
	Sender string     `json:"sender"`
	Funds  coin.Coins `json:"funds"`
}
