// Package rankclaim lets processes of a NATS world claim distinct ranks.
//
// Each rank is a key in a JetStream KeyValue bucket. A process claims the
// lowest free rank with an atomic Create and keeps the claim alive by
// renewing it before the bucket TTL expires. A crashed process frees its
// rank once the TTL passes.
package rankclaim
