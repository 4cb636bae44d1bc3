package utils

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ReadSecretFrom читает секрет secretName из каталога dir (Docker Secrets).
// Пустой файл считается ошибкой.
func ReadSecretFrom(dir, secretName string) (string, error) {
	filePath := filepath.Join(dir, secretName)
	secretBytes, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read secret file %s: %w", filePath, err)
	}
	secret := strings.TrimSpace(string(secretBytes))
	if secret == "" {
		return "", fmt.Errorf("secret file %s is empty", filePath)
	}
	return secret, nil
}

// ReadOptionalSecret как ReadSecretFrom, но отсутствующий файл не ошибка: возвращается "".
// Нечитаемый или пустой файл по-прежнему ошибка.
func ReadOptionalSecret(dir, secretName string) (string, error) {
	secret, err := ReadSecretFrom(dir, secretName)
	if errors.Is(err, fs.ErrNotExist) {
		return "", nil
	}
	return secret, err
}
