package security

import (
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/blake2b"
)

// IPHasher : односторонний keyed-хэш для анонимизации IP адресов.
// В БД и в аудит всегда попадает только дайджест, сырой адрес нигде не хранится.
type IPHasher struct {
	key []byte
}

func NewIPHasher(key string) (*IPHasher, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("[IPHasher] пустой ключ хэширования")
	}
	if len(key) > 64 {
		return nil, fmt.Errorf("[IPHasher] ключ длиннее 64 байт")
	}
	return &IPHasher{key: []byte(key)}, nil
}

func (h *IPHasher) Hash(ip string) string {
	hasher, err := blake2b.New256(h.key)
	if err != nil {
		// невозможен при валидном ключе, длина проверена в конструкторе
		panic(err)
	}
	hasher.Write([]byte(ip))
	return hex.EncodeToString(hasher.Sum(nil))
}
