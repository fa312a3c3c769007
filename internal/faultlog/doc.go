// Package faultlog is an append-only log of per-message failures kept in its
// own family of the store: values whose projection could not be derived and
// writes that failed after retries.
//
// Keys are lexicographically ordered for range scans:
//   - faults/m           (metadata: lastSeq)
//   - faults/e/{seq_be8} (entries)
//
// Values are stored as: varint(headerLen) | header | payload | crc32c(header|payload),
// where header is the JSON-encoded Fault and payload is the offending value.
//
//	l, _ := faultlog.Open(db)
//	seqs, _ := l.Append(ctx, faultlog.AppendRecord{
//		Fault:   faultlog.Fault{Kind: faultlog.KindProjectionDecode, Key: k, Reason: err.Error()},
//		Payload: value,
//	})
//	entries, next, _ := l.Read(faultlog.ReadOptions{Limit: 100})
//	_, _ = l.TrimToMax(ctx, 100000)
package faultlog
