package payglocal

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPaymentPayload() map[string]any {
	return map[string]any{
		"merchantTxnId":       "T1",
		"merchantCallbackURL": "https://merchant.example/callback",
		"paymentData": map[string]any{
			"totalAmount": "10.00",
			"txnCurrency": "INR",
		},
	}
}

func validSIPayload(siType string) map[string]any {
	p := validPaymentPayload()
	data := map[string]any{
		"numberOfPayments": "12",
		"frequency":        "MONTHLY",
		"type":             siType,
		"maxAmount":        "100.00",
	}
	if siType == "FIXED" {
		data["startDate"] = "2026-09-01"
	}
	p["standingInstruction"] = map[string]any{"data": data}
	return p
}

func requireValidationError(t *testing.T, err error, code, field string) {
	t.Helper()
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, code, vErr.Code)
	assert.Equal(t, field, vErr.Field)
}

func TestValidateNilPayload(t *testing.T) {
	err := validatePayload(nil, ruleSet{})
	requireValidationError(t, err, ValidationMissingField, "payload")
}

func TestValidateRequiredFieldsNameExactPath(t *testing.T) {
	for _, missing := range paymentRequiredFields {
		t.Run(missing, func(t *testing.T) {
			payload := validPaymentPayload()
			removePath(payload, missing)
			err := validatePayload(payload, ruleSet{required: paymentRequiredFields})
			requireValidationError(t, err, ValidationMissingField, missing)
		})
	}
}

func TestValidateNullCountsAsMissing(t *testing.T) {
	payload := validPaymentPayload()
	payload["paymentData"].(map[string]any)["totalAmount"] = nil
	err := validatePayload(payload, ruleSet{required: paymentRequiredFields})
	requireValidationError(t, err, ValidationMissingField, "paymentData.totalAmount")
}

func TestValidateOperationEnum(t *testing.T) {
	rules := ruleSet{operation: &enumRule{field: "action", allowed: []string{"pause"}}}

	require.NoError(t, validatePayload(map[string]any{"action": "pause"}, rules))

	err := validatePayload(map[string]any{"action": "stop"}, rules)
	requireValidationError(t, err, ValidationInvalidOperation, "action")

	err = validatePayload(map[string]any{}, rules)
	requireValidationError(t, err, ValidationInvalidOperation, "action")
}

func TestValidateConditionalStartDate(t *testing.T) {
	rules := ruleSet{
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
	}

	t.Run("fixed without startDate fails", func(t *testing.T) {
		payload := validSIPayload("FIXED")
		removePath(payload, "standingInstruction.data.startDate")
		err := validatePayload(payload, rules)
		requireValidationError(t, err, ValidationMissingField, "standingInstruction.data.startDate")
	})

	t.Run("fixed with startDate passes", func(t *testing.T) {
		require.NoError(t, validatePayload(validSIPayload("FIXED"), rules))
	})

	t.Run("variable with startDate fails", func(t *testing.T) {
		payload := validSIPayload("VARIABLE")
		payload["standingInstruction"].(map[string]any)["data"].(map[string]any)["startDate"] = "2026-09-01"
		err := validatePayload(payload, rules)
		requireValidationError(t, err, ValidationInvalidValue, "standingInstruction.data.startDate")
	})

	t.Run("variable without startDate passes", func(t *testing.T) {
		require.NoError(t, validatePayload(validSIPayload("VARIABLE"), rules))
	})
}

func TestValidateAnyOf(t *testing.T) {
	rules := ruleSet{anyOf: []string{"amount", "maxAmount"}}

	require.NoError(t, validatePayload(map[string]any{"amount": "5.00"}, rules))
	require.NoError(t, validatePayload(map[string]any{"maxAmount": "5.00"}, rules))

	err := validatePayload(map[string]any{"other": "x"}, rules)
	requireValidationError(t, err, ValidationMissingField, "amount or maxAmount")
}

func TestValidateBoolLiteral(t *testing.T) {
	rules := ruleSet{boolLiteral: &boolRule{field: "captureTxn", want: false}}

	require.NoError(t, validatePayload(map[string]any{"captureTxn": false}, rules))

	err := validatePayload(map[string]any{"captureTxn": true}, rules)
	requireValidationError(t, err, ValidationInvalidValue, "captureTxn")

	// String "false" is not the bool false.
	err = validatePayload(map[string]any{"captureTxn": "false"}, rules)
	requireValidationError(t, err, ValidationInvalidValue, "captureTxn")

	err = validatePayload(map[string]any{}, rules)
	requireValidationError(t, err, ValidationMissingField, "captureTxn")
}

func TestSchemaAcceptsFullPayload(t *testing.T) {
	payload := validPaymentPayload()
	payload["captureTxn"] = true
	payload["merchantUniqueId"] = "U1"
	payload["paymentData"].(map[string]any)["cardData"] = map[string]any{
		"number":       "4111111111111111",
		"expiryMonth":  "12",
		"expiryYear":   "2030",
		"securityCode": "123",
		"type":         "VISA",
	}
	payload["paymentData"].(map[string]any)["billingData"] = map[string]any{
		"firstName":   "Asha",
		"emailId":     "asha@example.com",
		"phoneNumber": "9999999999",
	}
	payload["standingInstruction"] = map[string]any{
		"data": map[string]any{
			"numberOfPayments": "6",
			"frequency":        "MONTHLY",
			"type":             "FIXED",
			"startDate":        "2026-09-01",
			"amount":           "10.00",
		},
	}
	payload["riskData"] = map[string]any{
		"orderData": []any{
			map[string]any{"productDescription": "book", "itemUnitPrice": "10.00", "itemQuantity": "1"},
		},
		"customerData": map[string]any{"ipAddress": "10.0.0.1"},
	}
	require.NoError(t, validateSchema(payload))
}

func TestSchemaRejectsUnknownTopLevelField(t *testing.T) {
	payload := validPaymentPayload()
	payload["merchantTxnID"] = "typo"
	err := validateSchema(payload)
	requireValidationError(t, err, ValidationUnrecognizedField, "merchantTxnID")
}

func TestSchemaRejectsUnknownNestedField(t *testing.T) {
	payload := validPaymentPayload()
	payload["paymentData"].(map[string]any)["amount"] = "10.00"
	err := validateSchema(payload)
	requireValidationError(t, err, ValidationUnrecognizedField, "paymentData.amount")
}

func TestSchemaRejectsWrongType(t *testing.T) {
	payload := validPaymentPayload()
	payload["paymentData"].(map[string]any)["totalAmount"] = 10.0
	err := validateSchema(payload)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, ValidationInvalidType, vErr.Code)
	assert.Equal(t, "paymentData.totalAmount", vErr.Field)
	assert.Equal(t, "string", vErr.Expected)
	assert.Equal(t, "number", vErr.Actual)
}

func TestSchemaRejectsWrongBoolType(t *testing.T) {
	payload := validPaymentPayload()
	payload["captureTxn"] = "true"
	err := validateSchema(payload)
	requireValidationError(t, err, ValidationInvalidType, "captureTxn")
}

func TestSchemaRejectsMissingTopLevelRequired(t *testing.T) {
	for _, missing := range requiredTopLevelFields {
		t.Run(missing, func(t *testing.T) {
			payload := validPaymentPayload()
			delete(payload, missing)
			err := validateSchema(payload)
			requireValidationError(t, err, ValidationMissingField, missing)
		})
	}
}

func TestSchemaChecksArrayElements(t *testing.T) {
	payload := validPaymentPayload()
	payload["riskData"] = map[string]any{
		"orderData": []any{
			map[string]any{"productDescription": "ok"},
			map[string]any{"unexpected": "x"},
		},
	}
	err := validateSchema(payload)
	requireValidationError(t, err, ValidationUnrecognizedField, "riskData.orderData[1].unexpected")
}

func TestLookupPath(t *testing.T) {
	payload := validPaymentPayload()

	v, ok := lookupPath(payload, "paymentData.txnCurrency")
	require.True(t, ok)
	assert.Equal(t, "INR", v)

	_, ok = lookupPath(payload, "paymentData.missing")
	assert.False(t, ok)

	// A non-object segment stops traversal.
	_, ok = lookupPath(payload, "merchantTxnId.deeper")
	assert.False(t, ok)
}

// removePath deletes the leaf of a dotted path from a nested payload.
func removePath(payload map[string]any, path string) {
	current := payload
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		if i == len(segments)-1 {
			delete(current, segment)
			return
		}
		next, ok := current[segment].(map[string]any)
		if !ok {
			return
		}
		current = next
	}
}
