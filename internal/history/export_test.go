package history

import "fmt"

// SetSchemaVersionForTest overwrites the stored schema version.
func (s *Store) SetSchemaVersionForTest(version int) error {
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", version))
	return err
}
