package stripe

import (
	"encoding/json"
	"time"

	"github.com/stripe/stripe-go/v76/webhook"
)

// SignPayload 生成带签名的回调请求体与 Stripe-Signature 头，供测试与本地联调使用
func SignPayload(secret string, payload []byte) (body []byte, header string) {
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    secret,
		Timestamp: time.Now(),
	})
	return signed.Payload, signed.Header
}

// EventJSON 构造最小事件 JSON
func EventJSON(id, eventType string, object map[string]interface{}) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"id":     id,
		"object": "event",
		"type":   eventType,
		"data":   map[string]interface{}{"object": object},
	})
	return data
}
