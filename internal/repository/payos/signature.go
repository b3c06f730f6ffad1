package payos

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"nickstore/domain"
)

// Sign computes the HMAC-SHA256 the gateway uses: hex digest over the
// payload fields joined as key=value pairs, sorted by key, '&' separated.
// The signature field itself is never part of the input.
func Sign(fields map[string]interface{}, checksumKey string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+stringify(fields[k]))
	}

	mac := hmac.New(sha256.New, []byte(checksumKey))
	mac.Write([]byte(strings.Join(pairs, "&")))

	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhook authenticates a raw webhook body against the checksum
// key and returns the typed payload. Any tampered field changes the
// canonical string and fails the comparison.
func VerifyWebhook(raw []byte, checksumKey string) (domain.PayOSWebhookPayload, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var fields map[string]interface{}
	if err := dec.Decode(&fields); err != nil {
		return domain.PayOSWebhookPayload{}, fmt.Errorf("%w: malformed payload", domain.ErrInvalidSignature)
	}

	signature, ok := fields["signature"].(string)
	if !ok || signature == "" {
		return domain.PayOSWebhookPayload{}, fmt.Errorf("%w: missing signature", domain.ErrInvalidSignature)
	}
	delete(fields, "signature")

	expected := Sign(fields, checksumKey)
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return domain.PayOSWebhookPayload{}, domain.ErrInvalidSignature
	}

	var payload domain.PayOSWebhookPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return domain.PayOSWebhookPayload{}, fmt.Errorf("%w: malformed payload", domain.ErrInvalidSignature)
	}

	return payload, nil
}

// stringify matches the gateway's canonical string form for each JSON
// value type. Numbers keep their literal form via json.Number.
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
