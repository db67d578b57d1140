//go:build ignore

// generate_hash.go — утилита для генерации Argon2id хеша пароля оператора.
// Запуск: go run scripts/generate_hash.go ваш_пароль
//
// Результат вставьте в .env как OPERATOR_PASSWORD_HASH.
package main

import (
	"crypto/rand"
	"fmt"
	"os"

	"nomercyzone.in/tournament-bot/internal/features/operator"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Использование: go run scripts/generate_hash.go <пароль>")
		os.Exit(1)
	}

	// Генерируем случайную соль (16 байт)
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		fmt.Printf("Ошибка генерации соли: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Хеш пароля (вставьте в .env как OPERATOR_PASSWORD_HASH):")
	fmt.Println(operator.HashPassword(os.Args[1], salt))
}
