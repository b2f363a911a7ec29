package sipay

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// GenerateHashKey builds the paySmart3D hash_key: the pipe-joined payment
// fields AES-256-CBC encrypted with a key derived from the app secret, packed
// as iv:salt:base64 with "/" rewritten to "__" for form transport.
func GenerateHashKey(total string, installments int, currencyCode, merchantKey, invoiceID, appSecret string) (string, error) {
	iv, err := randomHex(16)
	if err != nil {
		return "", fmt.Errorf("generate iv: %w", err)
	}
	salt, err := randomHex(4)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	data := fmt.Sprintf("%s|%d|%s|%s|%s", total, installments, currencyCode, merchantKey, invoiceID)
	return encryptHashKey(data, appSecret, iv, salt)
}

func encryptHashKey(data, appSecret, iv, salt string) (string, error) {
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("iv must be %d characters", aes.BlockSize)
	}

	block, err := aes.NewCipher(deriveKey(appSecret, salt))
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	plain := pkcs7Pad([]byte(data), aes.BlockSize)
	encrypted := make([]byte, len(plain))
	cipher.NewCBCEncrypter(block, []byte(iv)).CryptBlocks(encrypted, plain)

	bundle := fmt.Sprintf("%s:%s:%s", iv, salt, base64.StdEncoding.EncodeToString(encrypted))
	return strings.ReplaceAll(bundle, "/", "__"), nil
}

func decryptHashKey(hashKey, appSecret string) (string, error) {
	bundle := strings.ReplaceAll(hashKey, "__", "/")
	parts := strings.SplitN(bundle, ":", 3)
	if len(parts) != 3 {
		return "", fmt.Errorf("malformed hash key")
	}
	iv, salt := parts[0], parts[1]
	if len(iv) != aes.BlockSize {
		return "", fmt.Errorf("malformed iv")
	}

	encrypted, err := base64.StdEncoding.DecodeString(parts[2])
	if err != nil {
		return "", fmt.Errorf("decode ciphertext: %w", err)
	}
	if len(encrypted) == 0 || len(encrypted)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext not block aligned")
	}

	block, err := aes.NewCipher(deriveKey(appSecret, salt))
	if err != nil {
		return "", fmt.Errorf("init cipher: %w", err)
	}

	plain := make([]byte, len(encrypted))
	cipher.NewCBCDecrypter(block, []byte(iv)).CryptBlocks(plain, encrypted)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		return "", err
	}
	return string(unpadded), nil
}

// deriveKey hashes the app secret with SHA-1, salts it and stretches the
// result to the 32 bytes AES-256 needs. The scheme mirrors the gateway's
// server-side derivation, so both sides arrive at the same key.
func deriveKey(appSecret, salt string) []byte {
	password := hex.EncodeToString(sha1Sum([]byte(appSecret)))
	keyHex := hex.EncodeToString(sha256Sum([]byte(password + salt)))

	key, _ := hex.DecodeString(keyHex[:64])
	return key
}

func sha1Sum(data []byte) []byte {
	sum := sha1.Sum(data)
	return sum[:]
}

func sha256Sum(data []byte) []byte {
	sum := sha256.Sum256(data)
	return sum[:]
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	padding := blockSize - len(data)%blockSize
	padded := make([]byte, len(data)+padding)
	copy(padded, data)
	for i := len(data); i < len(padded); i++ {
		padded[i] = byte(padding)
	}
	return padded
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, fmt.Errorf("invalid padded length")
	}
	padding := int(data[len(data)-1])
	if padding == 0 || padding > blockSize || padding > len(data) {
		return nil, fmt.Errorf("invalid padding")
	}
	for _, b := range data[len(data)-padding:] {
		if int(b) != padding {
			return nil, fmt.Errorf("invalid padding")
		}
	}
	return data[:len(data)-padding], nil
}

// VerifyNotificationHash checks the HMAC the gateway attaches to payment
// result callbacks.
func VerifyNotificationHash(merchantOID, status, totalAmount, receivedHash, merchantKey string) bool {
	mac := hmac.New(sha256.New, []byte(merchantKey))
	mac.Write([]byte(merchantOID + merchantKey + status + totalAmount))
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return subtle.ConstantTimeCompare([]byte(expected), []byte(receivedHash)) == 1
}

func randomHex(chars int) (string, error) {
	buf := make([]byte, (chars+1)/2)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf)[:chars], nil
}
