package conversation

import (
	"context"
	"net/http"
	"strings"

	"connectrpc.com/connect"
)

// ServiceName is the fully-qualified name of the ConversationService.
const ServiceName = "orderbot.conversation.v1.ConversationService"

// Procedure paths, in the form the Connect protocol routes on.
const (
	SendTurnProcedure        = "/" + ServiceName + "/SendTurn"
	GetConversationProcedure = "/" + ServiceName + "/GetConversation"
	EndConversationProcedure = "/" + ServiceName + "/EndConversation"
	DrainMessagesProcedure   = "/" + ServiceName + "/DrainMessages"
)

// ServiceHandler is implemented by the conversation platform.
type ServiceHandler interface {
	SendTurn(context.Context, *connect.Request[SendTurnRequest]) (*connect.Response[SendTurnResponse], error)
	GetConversation(context.Context, *connect.Request[GetConversationRequest]) (*connect.Response[GetConversationResponse], error)
	EndConversation(context.Context, *connect.Request[EndConversationRequest]) (*connect.Response[EndConversationResponse], error)
	DrainMessages(context.Context, *connect.Request[DrainMessagesRequest]) (*connect.Response[DrainMessagesResponse], error)
}

// NewServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
// opts must include a codec named "json" unless the default JSON codec is
// acceptable to every caller.
func NewServiceHandler(svc ServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	sendTurn := connect.NewUnaryHandler(SendTurnProcedure, svc.SendTurn, opts...)
	getConversation := connect.NewUnaryHandler(GetConversationProcedure, svc.GetConversation, opts...)
	endConversation := connect.NewUnaryHandler(EndConversationProcedure, svc.EndConversation, opts...)
	drainMessages := connect.NewUnaryHandler(DrainMessagesProcedure, svc.DrainMessages, opts...)

	return "/" + ServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case SendTurnProcedure:
			sendTurn.ServeHTTP(w, r)
		case GetConversationProcedure:
			getConversation.ServeHTTP(w, r)
		case EndConversationProcedure:
			endConversation.ServeHTTP(w, r)
		case DrainMessagesProcedure:
			drainMessages.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// Client calls a remote ConversationService.
type Client struct {
	sendTurn        *connect.Client[SendTurnRequest, SendTurnResponse]
	getConversation *connect.Client[GetConversationRequest, GetConversationResponse]
	endConversation *connect.Client[EndConversationRequest, EndConversationResponse]
	drainMessages   *connect.Client[DrainMessagesRequest, DrainMessagesResponse]
}

// NewClient constructs a client for the service at baseURL. Clients must
// use the same codec as the server.
func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		sendTurn:        connect.NewClient[SendTurnRequest, SendTurnResponse](httpClient, baseURL+SendTurnProcedure, opts...),
		getConversation: connect.NewClient[GetConversationRequest, GetConversationResponse](httpClient, baseURL+GetConversationProcedure, opts...),
		endConversation: connect.NewClient[EndConversationRequest, EndConversationResponse](httpClient, baseURL+EndConversationProcedure, opts...),
		drainMessages:   connect.NewClient[DrainMessagesRequest, DrainMessagesResponse](httpClient, baseURL+DrainMessagesProcedure, opts...),
	}
}

func (c *Client) SendTurn(ctx context.Context, req *connect.Request[SendTurnRequest]) (*connect.Response[SendTurnResponse], error) {
	return c.sendTurn.CallUnary(ctx, req)
}

func (c *Client) GetConversation(ctx context.Context, req *connect.Request[GetConversationRequest]) (*connect.Response[GetConversationResponse], error) {
	return c.getConversation.CallUnary(ctx, req)
}

func (c *Client) EndConversation(ctx context.Context, req *connect.Request[EndConversationRequest]) (*connect.Response[EndConversationResponse], error) {
	return c.endConversation.CallUnary(ctx, req)
}

func (c *Client) DrainMessages(ctx context.Context, req *connect.Request[DrainMessagesRequest]) (*connect.Response[DrainMessagesResponse], error) {
	return c.drainMessages.CallUnary(ctx, req)
}
