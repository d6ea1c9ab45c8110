package utils

import (
	"math/rand"
	"strings"
)

// InviteCodeLength длина кода приглашения в команду
const InviteCodeLength = 8

// без похожих символов: 0/O, 1/I
const inviteAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomString генерирует случайную строку заданной длины из указанного алфавита
func RandomString(n int, alphabet string) string {
	var sb strings.Builder
	sb.Grow(n)
	k := len(alphabet)

	for i := 0; i < n; i++ {
		sb.WriteByte(alphabet[rand.Intn(k)])
	}

	return sb.String()
}

// NewInviteCode генерирует код приглашения в команду
func NewInviteCode() string {
	return RandomString(InviteCodeLength, inviteAlphabet)
}
