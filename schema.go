package payglocal

import "fmt"

// The paycollect payload schema is closed: any key not declared here is
// rejected, at any nesting level, and every declared field has a fixed
// JSON type. Amount and count fields travel as strings on the wire.

type fieldKind int

const (
	kindString fieldKind = iota
	kindBool
	kindObject
	kindArray
)

type fieldSpec struct {
	kind   fieldKind
	fields map[string]fieldSpec
	elem   *fieldSpec
}

func str() fieldSpec     { return fieldSpec{kind: kindString} }
func boolean() fieldSpec { return fieldSpec{kind: kindBool} }

func obj(fields map[string]fieldSpec) fieldSpec {
	return fieldSpec{kind: kindObject, fields: fields}
}

func arr(elem fieldSpec) fieldSpec {
	return fieldSpec{kind: kindArray, elem: &elem}
}

// requiredTopLevelFields must be present in every payload that goes
// through the full schema check.
var requiredTopLevelFields = []string{"merchantTxnId", "merchantCallbackURL", "paymentData"}

var contactFields = map[string]fieldSpec{
	"firstName":         str(),
	"lastName":          str(),
	"addressStreet1":    str(),
	"addressStreet2":    str(),
	"addressCity":       str(),
	"addressState":      str(),
	"addressStateCode":  str(),
	"addressPostalCode": str(),
	"addressCountry":    str(),
	"emailId":           str(),
	"callingCode":       str(),
	"phoneNumber":       str(),
}

var paycollectSchema = obj(map[string]fieldSpec{
	"merchantTxnId":       str(),
	"merchantUniqueId":    str(),
	"merchantCallbackURL": str(),
	"merchantWebhookURL":  str(),
	"captureTxn":          boolean(),
	"clientPlatform":      str(),
	"paymentData": obj(map[string]fieldSpec{
		"totalAmount": str(),
		"txnCurrency": str(),
		"billingData": obj(contactFields),
		"cardData": obj(map[string]fieldSpec{
			"number":       str(),
			"expiryMonth":  str(),
			"expiryYear":   str(),
			"securityCode": str(),
			"type":         str(),
		}),
		"tokenData": obj(map[string]fieldSpec{
			"altId":       str(),
			"number":      str(),
			"expiryMonth": str(),
			"expiryYear":  str(),
			"cryptogram":  str(),
			"requestorID": str(),
			"firstSix":    str(),
			"lastFour":    str(),
			"tokenType":   str(),
		}),
	}),
	"standingInstruction": obj(map[string]fieldSpec{
		"data": obj(map[string]fieldSpec{
			"numberOfPayments": str(),
			"frequency":        str(),
			"type":             str(),
			"startDate":        str(),
			"amount":           str(),
			"maxAmount":        str(),
		}),
	}),
	"riskData": obj(map[string]fieldSpec{
		"orderData": arr(obj(map[string]fieldSpec{
			"productDescription": str(),
			"productSKU":         str(),
			"productType":        str(),
			"itemUnitPrice":      str(),
			"itemQuantity":       str(),
		})),
		"customerData": obj(map[string]fieldSpec{
			"merchantAssignedCustomerId":  str(),
			"customerAccountType":         str(),
			"customerSuccessOrderCount":   str(),
			"customerAccountCreationDate": str(),
			"ipAddress":                   str(),
			"httpAccept":                  str(),
			"httpUserAgent":               str(),
		}),
		"shippingData": obj(contactFields),
		"flightData": arr(obj(map[string]fieldSpec{
			"agentCode":       str(),
			"agentName":       str(),
			"ticketNumber":    str(),
			"reservationDate": str(),
			"journeyType":     str(),
			"origin":          str(),
			"destination":     str(),
			"departureDate":   str(),
			"carrierCode":     str(),
			"serviceClass":    str(),
			"passengerName":   str(),
		})),
		"trainData": arr(obj(map[string]fieldSpec{
			"ticketNumber":  str(),
			"origin":        str(),
			"destination":   str(),
			"departureDate": str(),
			"serviceClass":  str(),
			"passengerName": str(),
		})),
		"busData": arr(obj(map[string]fieldSpec{
			"ticketNumber":  str(),
			"origin":        str(),
			"destination":   str(),
			"departureDate": str(),
			"carrierName":   str(),
			"passengerName": str(),
		})),
		"cabData": arr(obj(map[string]fieldSpec{
			"pickupAddress": str(),
			"dropAddress":   str(),
			"pickupDate":    str(),
			"cabType":       str(),
		})),
		"lodgingData": obj(map[string]fieldSpec{
			"checkInDate":  str(),
			"checkOutDate": str(),
			"hotelName":    str(),
			"roomCount":    str(),
			"guestCount":   str(),
		}),
	}),
})

// validateSchema structurally validates a payment-initiation payload
// against the fixed paycollect schema: required top-level keys, declared
// types per field, unknown keys rejected at every level.
func validateSchema(payload map[string]any) error {
	for _, key := range requiredTopLevelFields {
		if v, ok := payload[key]; !ok || v == nil {
			return &ValidationError{Code: ValidationMissingField, Field: key}
		}
	}
	return checkObject(payload, paycollectSchema.fields, "")
}

func checkObject(m map[string]any, fields map[string]fieldSpec, prefix string) error {
	for key, value := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		spec, declared := fields[key]
		if !declared {
			return &ValidationError{Code: ValidationUnrecognizedField, Field: path}
		}
		if value == nil {
			// Explicit null reads as absent; presence rules catch it.
			continue
		}
		if err := checkValue(value, spec, path); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(value any, spec fieldSpec, path string) error {
	switch spec.kind {
	case kindString:
		if _, ok := value.(string); !ok {
			return typeError(path, "string", value)
		}
	case kindBool:
		if _, ok := value.(bool); !ok {
			return typeError(path, "boolean", value)
		}
	case kindObject:
		m, ok := value.(map[string]any)
		if !ok {
			return typeError(path, "object", value)
		}
		return checkObject(m, spec.fields, path)
	case kindArray:
		items, ok := value.([]any)
		if !ok {
			return typeError(path, "array", value)
		}
		for i, item := range items {
			if item == nil {
				continue
			}
			if err := checkValue(item, *spec.elem, fmt.Sprintf("%s[%d]", path, i)); err != nil {
				return err
			}
		}
	}
	return nil
}

func typeError(path, expected string, actual any) error {
	return &ValidationError{
		Code:     ValidationInvalidType,
		Field:    path,
		Expected: expected,
		Actual:   jsonTypeName(actual),
	}
}

func jsonTypeName(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64:
		return "number"
	case map[string]any:
		return "object"
	case []any:
		return "array"
	case nil:
		return "null"
	default:
		return fmt.Sprintf("%T", v)
	}
}
