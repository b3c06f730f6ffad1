package utils

import "github.com/pobyzaarif/goshortcute"

// EncryptCredential encrypts a game-account credential for storage.
// The result is base64 so it survives a text column round trip.
func EncryptCredential(plain, key string) (string, error) {
	encrypted, err := goshortcute.AESCBCEncrypt([]byte(plain), []byte(key))
	if err != nil {
		return "", err
	}

	return goshortcute.StringtoBase64Encode(encrypted), nil
}

func DecryptCredential(stored, key string) (string, error) {
	decoded := goshortcute.StringtoBase64Decode(stored)

	return goshortcute.AESCBCDecrypt([]byte(decoded), []byte(key))
}
