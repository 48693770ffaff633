// internal/models/a2a.go
package models

import "encoding/json"

// JSONRPCVersion is the only protocol version accepted and emitted.
const JSONRPCVersion = "2.0"

const (
	MethodMessageSend = "message/send"

	PartKindText    = "text"
	PartKindData    = "data"
	KindMessage     = "message"
	RoleUser        = "user"
	RoleAgent       = "agent"
	TaskStateDone   = "completed"
	ArtifactText    = "linkedinHeadlineResponse"
	ArtifactResults = "HeadlineResults"
)

// Part is one element of a message's parts sequence.
type Part struct {
	Kind string      `json:"kind"`
	Text string      `json:"text,omitempty"`
	Data interface{} `json:"data,omitempty"`
}

// InboundMessage is params.message of a message/send request.
type InboundMessage struct {
	Parts     []Part `json:"parts"`
	TaskID    string `json:"taskId,omitempty"`
	MessageID string `json:"messageId,omitempty"`
}

// InboundEnvelope is a read-only view of a validated JSON-RPC request.
// ID keeps the exact JSON encoding of the inbound id, or nil when absent.
type InboundEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Method  string          `json:"method"`
	Message InboundMessage  `json:"-"`
}

// OutboundEnvelope carries exactly one of Result and Error. A nil ID encodes as null.
type OutboundEnvelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  *TaskResult     `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

type TaskResult struct {
	ID        string     `json:"id"`
	ContextID string     `json:"contextId"`
	Status    TaskStatus `json:"status"`
	Artifacts []Artifact `json:"artifacts"`
}

type TaskStatus struct {
	State     string   `json:"state"`
	Timestamp string   `json:"timestamp"`
	Message   *Message `json:"message,omitempty"`
}

type Message struct {
	MessageID string `json:"messageId"`
	Role      string `json:"role"`
	Parts     []Part `json:"parts"`
	Kind      string `json:"kind"`
}

type Artifact struct {
	ArtifactID string `json:"artifactId"`
	Name       string `json:"name"`
	Parts      []Part `json:"parts"`
}

// RPCError is the JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// AgentCard is published at /.well-known/agent.json.
type AgentCard struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	URL                string            `json:"url"`
	Version            string            `json:"version"`
	Capabilities       AgentCapabilities `json:"capabilities"`
	DefaultInputModes  []string          `json:"defaultInputModes"`
	DefaultOutputModes []string          `json:"defaultOutputModes"`
	Skills             []AgentSkill      `json:"skills"`
}

type AgentCapabilities struct {
	Streaming              bool `json:"streaming"`
	PushNotifications      bool `json:"pushNotifications"`
	StateTransitionHistory bool `json:"stateTransitionHistory"`
}

type AgentSkill struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Examples    []string `json:"examples,omitempty"`
}
