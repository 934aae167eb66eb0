// Package client is the auth transport layer: one method per backend
// endpoint, JSON in and out, no retry of its own.
//
// # Overview
//
//  1. Client is the transport-agnostic contract used by the orchestrator.
//  2. HTTPClient implements it over the resilient netx client, which owns
//     retry, pacing and error classification.
//  3. Precondition errors (ErrDeviceIDMissing, ErrRestartFlow, ...) are
//     detected by callers before any request is made; they are declared
//     here so every layer matches the same values.
//  4. Describe renders any error produced by the stack for an end user.
//
// # Error Handling
//
// Network failures surface as *netx.Error and match netx.ErrTransport,
// netx.ErrHTTP, netx.ErrAPI, netx.ErrEncoding or netx.ErrUnknown with
// errors.Is. A response that cannot be decoded is reported as unknown.
//
// All methods accept a context.Context and are safe for concurrent use.
package client
