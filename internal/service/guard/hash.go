package guard

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"

	"github.com/heartmarshall/qareview/internal/domain"
)

// PayloadHash fingerprints a review submission for duplicate detection.
// Fields are length-prefixed so that no two distinct submissions share an
// encoding; a nil comment differs from an empty one.
func PayloadHash(subjectID string, key domain.GroupKey, status domain.QaStatus, reporterUserID string, comment *string) []byte {
	buf := make([]byte, 0, 256)
	for _, field := range []string{
		subjectID, key.EntityID, key.LogicalType, key.ReportingPeriod, string(status), reporterUserID,
	} {
		buf = appendField(buf, field)
	}
	if comment == nil {
		buf = append(buf, 0)
	} else {
		buf = append(buf, 1)
		buf = appendField(buf, *comment)
	}

	sum := blake2b.Sum256(buf)
	return sum[:]
}

func appendField(buf []byte, s string) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(s)))
	return append(buf, s...)
}
