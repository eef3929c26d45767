package payglocal

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/payglocal/payglocal-go/models"
)

// Client interacts with the PayGlocal payment gateway REST API.
//
// It holds one immutable Config; all methods are safe for concurrent use.
// Every call independently validates its payload, generates fresh tokens
// where the auth mode requires them, and performs a single round trip.
type Client struct {
	cfg        Config
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	timeout    time.Duration
}

// NewClient creates a new PayGlocal client. It validates the configuration
// and sets up a logger at the configured level writing to stderr.
func NewClient(cfg Config) (*Client, error) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.slogLevel()}))
	return NewClientWithLogger(cfg, logger)
}

// NewClientWithLogger is NewClient with a caller-supplied logger.
func NewClientWithLogger(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		baseURL:    cfg.DefaultBaseURL(),
		logger:     logger.With(slog.String("sdk", "payglocal")),
		timeout:    requestTimeout,
	}, nil
}

// paymentRequiredFields are the fields every payment initiation must carry.
var paymentRequiredFields = []string{
	"merchantTxnId",
	"paymentData",
	"merchantCallbackURL",
	"paymentData.totalAmount",
	"paymentData.txnCurrency",
}

// InitiateAPIKeyPayment starts a paycollect payment authenticated with the
// configured API key. The payload travels as plain JSON in the x-gl-auth
// mode; no schema check and no token generation.
func (c *Client) InitiateAPIKeyPayment(ctx context.Context, payload map[string]any) (models.APIResponse, error) {
	const op = "apiKeyPayment"
	if err := c.validate(op, payload, ruleSet{required: paymentRequiredFields}); err != nil {
		return models.APIResponse{}, err
	}
	return c.sendJSON(ctx, op, http.MethodPost, endpointPaymentInitiate, payload)
}

// InitiatePayment starts a paycollect payment in token-pair mode: the
// payload is schema-checked, encrypted into a JWE body, and signed with a
// JWS. When card data is present without a type, the type is derived from
// the card number.
func (c *Client) InitiatePayment(ctx context.Context, payload map[string]any) (models.APIResponse, error) {
	const op = "payment"
	payload = withDefaultCardType(payload)
	if err := c.validate(op, payload, ruleSet{required: paymentRequiredFields, schema: true}); err != nil {
		return models.APIResponse{}, err
	}
	return c.sendTokenized(ctx, op, http.MethodPost, endpointPaymentInitiate, payload, "")
}

// InitiateSIPayment starts a payment that registers a standing instruction.
// On top of the payment rules it requires the SI mandate data, restricts
// the mandate type to FIXED or VARIABLE, requires startDate for FIXED
// mandates (and rejects it for VARIABLE ones), and needs at least one of
// amount/maxAmount.
func (c *Client) InitiateSIPayment(ctx context.Context, payload map[string]any) (models.APIResponse, error) {
	const op = "siPayment"
	payload = withDefaultCardType(payload)
	rules := ruleSet{
		required: append(append([]string{}, paymentRequiredFields...),
			"standingInstruction.data.numberOfPayments",
			"standingInstruction.data.frequency",
			"standingInstruction.data.type",
		),
		operation: &enumRule{
			field:   "standingInstruction.data.type",
			allowed: []string{"FIXED", "VARIABLE"},
		},
		conditionals: []conditionalRule{
			{
				triggerField: "standingInstruction.data.type",
				triggerValue: "FIXED",
				thenRequired: []string{"standingInstruction.data.startDate"},
			},
			{
				triggerField: "standingInstruction.data.type",
				triggerValue: "VARIABLE",
				thenAbsent:   []string{"standingInstruction.data.startDate"},
			},
		},
		anyOf:  []string{"standingInstruction.data.amount", "standingInstruction.data.maxAmount"},
		schema: true,
	}
	if err := c.validate(op, payload, rules); err != nil {
		return models.APIResponse{}, err
	}
	return c.sendTokenized(ctx, op, http.MethodPost, endpointPaymentInitiate, payload, "")
}

// InitiateAuthPayment starts an auth-only payment. captureTxn must be
// present and exactly false; the funds are captured later with
// CapturePayment.
func (c *Client) InitiateAuthPayment(ctx context.Context, payload map[string]any) (models.APIResponse, error) {
	const op = "authPayment"
	payload = withDefaultCardType(payload)
	rules := ruleSet{
		required:    append(append([]string{}, paymentRequiredFields...), "captureTxn"),
		boolLiteral: &boolRule{field: "captureTxn", want: false},
		schema:      true,
	}
	if err := c.validate(op, payload, rules); err != nil {
		return models.APIResponse{}, err
	}
	return c.sendTokenized(ctx, op, http.MethodPost, endpointPaymentInitiate, payload, "")
}

// RefundPayment refunds a captured transaction identified by gid.
// The payload must carry refundAmount.
func (c *Client) RefundPayment(ctx context.Context, gid string, payload map[string]any) (models.APIResponse, error) {
	const op = "refund"
	if err := c.requireGID(op, gid); err != nil {
		return models.APIResponse{}, err
	}
	if err := c.validate(op, payload, ruleSet{required: []string{"refundAmount"}}); err != nil {
		return models.APIResponse{}, err
	}
	path := buildEndpoint(endpointTxnRefund, map[string]string{"gid": gid})
	return c.sendTokenized(ctx, op, http.MethodPost, path, payload, "")
}

// CapturePayment captures a previously authorized transaction.
// The payload must carry captureAmount.
func (c *Client) CapturePayment(ctx context.Context, gid string, payload map[string]any) (models.APIResponse, error) {
	const op = "capture"
	if err := c.requireGID(op, gid); err != nil {
		return models.APIResponse{}, err
	}
	if err := c.validate(op, payload, ruleSet{required: []string{"captureAmount"}}); err != nil {
		return models.APIResponse{}, err
	}
	path := buildEndpoint(endpointTxnCapture, map[string]string{"gid": gid})
	return c.sendTokenized(ctx, op, http.MethodPost, path, payload, "")
}

// ReverseAuthPayment reverses an authorization that has not been captured.
// The payload must carry reversalAmount.
func (c *Client) ReverseAuthPayment(ctx context.Context, gid string, payload map[string]any) (models.APIResponse, error) {
	const op = "authReversal"
	if err := c.requireGID(op, gid); err != nil {
		return models.APIResponse{}, err
	}
	if err := c.validate(op, payload, ruleSet{required: []string{"reversalAmount"}}); err != nil {
		return models.APIResponse{}, err
	}
	path := buildEndpoint(endpointTxnAuthReversal, map[string]string{"gid": gid})
	return c.sendTokenized(ctx, op, http.MethodPost, path, payload, "")
}

// CheckStatus fetches the current state of a transaction. GET calls have
// no body, so the JWS signs the literal endpoint path instead.
func (c *Client) CheckStatus(ctx context.Context, gid string) (models.APIResponse, error) {
	const op = "status"
	if err := c.requireGID(op, gid); err != nil {
		return models.APIResponse{}, err
	}
	path := buildEndpoint(endpointTxnStatus, map[string]string{"gid": gid})
	return c.sendSignedGet(ctx, op, path)
}

// PauseStandingInstruction pauses an active standing instruction.
// The payload must carry siId and action, and action must be "pause".
func (c *Client) PauseStandingInstruction(ctx context.Context, payload map[string]any) (models.APIResponse, error) {
	return c.modifyStandingInstruction(ctx, "siPause", "pause", payload)
}

// ActivateStandingInstruction re-activates a paused standing instruction.
// The payload must carry siId and action, and action must be "activate".
func (c *Client) ActivateStandingInstruction(ctx context.Context, payload map[string]any) (models.APIResponse, error) {
	return c.modifyStandingInstruction(ctx, "siActivate", "activate", payload)
}

func (c *Client) modifyStandingInstruction(ctx context.Context, op, action string, payload map[string]any) (models.APIResponse, error) {
	rules := ruleSet{
		required:  []string{"siId", "action"},
		operation: &enumRule{field: "action", allowed: []string{action}},
	}
	if err := c.validate(op, payload, rules); err != nil {
		return models.APIResponse{}, err
	}
	return c.sendTokenized(ctx, op, http.MethodPost, endpointSIModify, payload, "")
}

// StandingInstructionStatus fetches the state of a standing instruction
// mandate. The payload must carry siId.
func (c *Client) StandingInstructionStatus(ctx context.Context, payload map[string]any) (models.APIResponse, error) {
	const op = "siStatus"
	if err := c.validate(op, payload, ruleSet{required: []string{"siId"}}); err != nil {
		return models.APIResponse{}, err
	}
	return c.sendTokenized(ctx, op, http.MethodPost, endpointSIStatus, payload, "")
}

// validate runs the rule set and logs any failure with its field context
// before returning it. Validation failures never reach the transport.
func (c *Client) validate(operation string, payload map[string]any, rules ruleSet) error {
	err := validatePayload(payload, rules)
	if err == nil {
		return nil
	}
	field := ""
	var vErr *ValidationError
	if errors.As(err, &vErr) {
		field = vErr.Field
	}
	c.logger.Error("validation failed",
		slog.String("operation", operation),
		slog.String("field", field),
		slog.Any("error", err),
	)
	return err
}

func (c *Client) requireGID(operation, gid string) error {
	if gid != "" {
		return nil
	}
	err := &ValidationError{Code: ValidationMissingField, Field: "gid"}
	c.logger.Error("validation failed", slog.String("operation", operation), slog.String("field", "gid"))
	return err
}

// withDefaultCardType returns the payload with paymentData.cardData.type
// filled in from the card number when it is missing and the brand is
// recognizable. The caller's payload is never mutated; a deep copy is
// returned when a default is applied.
func withDefaultCardType(payload map[string]any) map[string]any {
	v, ok := lookupPath(payload, "paymentData.cardData.number")
	if !ok {
		return payload
	}
	number, ok := v.(string)
	if !ok {
		return payload
	}
	if _, typed := lookupPath(payload, "paymentData.cardData.type"); typed {
		return payload
	}
	code := CardTypeCode[DetectCardBrand(number)]
	if code == "" {
		return payload
	}
	clone, err := clonePayload(payload)
	if err != nil {
		return payload
	}
	clone["paymentData"].(map[string]any)["cardData"].(map[string]any)["type"] = code
	return clone
}

func clonePayload(payload map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	var clone map[string]any
	if err := json.Unmarshal(raw, &clone); err != nil {
		return nil, err
	}
	return clone, nil
}
