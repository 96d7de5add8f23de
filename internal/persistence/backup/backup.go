package backup

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"

	"shudao.quest/internal/persistence/store"
)

// Archive is the on-disk backup format: every live save at export time.
type Archive struct {
	Version   int       `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	Players   []Save    `json:"players"`
}

type Save struct {
	PlayerID string          `json:"playerId"`
	Data     json.RawMessage `json:"data"`
}

// Export writes a zstd-compressed JSON archive of all live saves. The file
// lands via temp-and-rename so a crash never leaves a torn backup.
func Export(s *store.Store, path string) error {
	arch := Archive{Version: 1, CreatedAt: time.Now().UTC()}
	err := s.ForEachPlayer(func(playerID string, data []byte) error {
		arch.Players = append(arch.Players, Save{PlayerID: playerID, Data: append(json.RawMessage(nil), data...)})
		return nil
	})
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}

	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return err
	}
	bw := bufio.NewWriterSize(enc, 128*1024)
	if err := json.NewEncoder(bw).Encode(&arch); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return fmt.Errorf("encode backup: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = enc.Close()
		_ = f.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Read loads an archive back, for restore tooling and tests.
func Read(path string) (Archive, error) {
	var arch Archive
	f, err := os.Open(path)
	if err != nil {
		return arch, err
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return arch, err
	}
	defer dec.Close()

	if err := json.NewDecoder(bufio.NewReaderSize(dec, 128*1024)).Decode(&arch); err != nil {
		return arch, fmt.Errorf("decode backup: %w", err)
	}
	return arch, nil
}
