package model

import "encoding/json"

// Invocation is the payload an autotask receives from the monitoring service.
type Invocation struct {
	Secrets map[string]string `json:"secrets"`
	Request *Request          `json:"request"`
}

// Request wraps the inbound alert body.
type Request struct {
	Body *AlertBody `json:"body"`
}

// AlertBody describes one alert event. When Events is non-empty the body is a
// batch and the top-level alert fields are ignored.
type AlertBody struct {
	Alert  *Alert       `json:"alert"`
	Source *Source      `json:"source,omitempty"`
	Hash   string       `json:"hash"`
	Events []*AlertBody `json:"events,omitempty"`
}

// Alert carries domain-specific metadata produced by the monitor.
type Alert struct {
	Metadata map[string]any `json:"metadata"`
}

// Source references the chain transaction that triggered the alert.
type Source struct {
	TransactionHash string `json:"transactionHash"`
	Block           *Block `json:"block,omitempty"`
}

// Block identifies the chain the transaction was mined on.
type Block struct {
	ChainID json.Number `json:"chainId"`
}

// Body returns the alert body or nil when the envelope is incomplete.
func (inv *Invocation) Body() *AlertBody {
	if inv == nil || inv.Request == nil {
		return nil
	}
	return inv.Request.Body
}

// DeliveryRequest is a formatted message bound for a single destination.
type DeliveryRequest struct {
	DestinationURL string
	MessageBody    string
}

// Result records the outcome of handling one event of a batch.
type Result struct {
	Index int
	Hash  string
	Err   error
}
