package razorpay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"
)

func TestVerifySignature(t *testing.T) {
	c := NewClient("", "key", "top-secret", nil)

	mac := hmac.New(sha256.New, []byte("top-secret"))
	mac.Write([]byte("order_1|pay_1"))
	valid := hex.EncodeToString(mac.Sum(nil))

	if got := Sign("top-secret", "order_1", "pay_1"); got != valid {
		t.Fatalf("Sign = %s, want %s", got, valid)
	}

	tests := []struct {
		name      string
		orderID   string
		paymentID string
		signature string
		want      bool
	}{
		{"authentic", "order_1", "pay_1", valid, true},
		{"tampered payment", "order_1", "pay_2", valid, false},
		{"tampered order", "order_2", "pay_1", valid, false},
		{"wrong secret", "order_1", "pay_1", Sign("other", "order_1", "pay_1"), false},
		{"garbage signature", "order_1", "pay_1", "ab", false},
		{"empty signature", "order_1", "pay_1", "", false},
		{"empty order", "", "pay_1", valid, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.VerifySignature(tt.orderID, tt.paymentID, tt.signature); got != tt.want {
				t.Fatalf("VerifySignature = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVerifySignature_EmptySecretRejectsEverything(t *testing.T) {
	c := NewClient("", "key", "", nil)

	// Подпись с пустым ключом вычислима без доступа к секрету.
	forged := Sign("", "order_attacker", "pay_attacker")
	if c.VerifySignature("order_attacker", "pay_attacker", forged) {
		t.Fatalf("VerifySignature accepted a signature made with an empty secret")
	}
	if c.VerifySignature("order_1", "pay_1", Sign("top-secret", "order_1", "pay_1")) {
		t.Fatalf("VerifySignature accepted a signature without a configured secret")
	}
}
