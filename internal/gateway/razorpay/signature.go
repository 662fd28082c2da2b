package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// Sign — HMAC-SHA256(secret, orderID + "|" + paymentID) в hex.
func Sign(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature — подпись, полученная клиентом после оплаты, выдана именно этим шлюзом.
// Сравнение за постоянное время. Без секрета подпись не принимается никогда:
// HMAC с пустым ключом может посчитать кто угодно.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	if c.keySecret == "" {
		return false
	}
	if orderID == "" || paymentID == "" || signature == "" {
		return false
	}
	expected := Sign(c.keySecret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
