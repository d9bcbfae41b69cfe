package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainPlan   = "rewrites/plan/v1"
	DomainRecord = "rewrites/record/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// PlanDigest computes a content hash of the operations a plan would apply.
// Two plans with the same digest write the same rows. Desired entries,
// conflicts and collisions are part of the digest so golden output changes
// whenever the plan's reasoning does.
func PlanDigest(p *Plan) (string, error) {
	canonical, err := MarshalCanonical(planObject(p))
	if err != nil {
		return "", fmt.Errorf("PlanDigest: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// MustPlanDigest is like PlanDigest but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustPlanDigest(p *Plan) string {
	d, err := PlanDigest(p)
	if err != nil {
		panic(err)
	}
	return d
}

// RecordHash identifies a rewrite by its content, ignoring its id.
func RecordHash(r RewriteRecord) (string, error) {
	canonical, err := MarshalCanonical(recordObject(r))
	if err != nil {
		return "", fmt.Errorf("RecordHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainRecord, canonical), nil
}

func planObject(p *Plan) IRObject {
	desired := make(IRArray, 0, len(p.Desired))
	for _, d := range p.Desired {
		obj := IRObject{
			"request_path": IRString(d.RequestPath),
			"target_path":  IRString(d.TargetPath),
		}
		if d.CategoryID != nil {
			obj["category_id"] = IRInt(*d.CategoryID)
		}
		desired = append(desired, obj)
	}

	updates := make(IRArray, 0, len(p.ToUpdate))
	for _, r := range p.ToUpdate {
		obj := recordObject(r)
		if r.ID != nil {
			obj["id"] = IRInt(*r.ID)
		}
		updates = append(updates, obj)
	}

	creates := make(IRArray, 0, len(p.ToCreate))
	for _, r := range p.ToCreate {
		creates = append(creates, recordObject(r))
	}

	conflicts := make(IRArray, 0, len(p.Conflicts))
	for _, c := range p.Conflicts {
		obj := IRObject{
			"request_path": IRString(c.RequestPath),
			"held_by":      IRInt(c.HeldBy),
		}
		if c.CategoryID != nil {
			obj["category_id"] = IRInt(*c.CategoryID)
		}
		conflicts = append(conflicts, obj)
	}

	collisions := make(IRArray, 0, len(p.Collisions))
	for _, c := range p.Collisions {
		losers := make(IRArray, 0, len(c.Losers))
		for _, l := range c.Losers {
			losers = append(losers, IRInt(l))
		}
		collisions = append(collisions, IRObject{
			"request_path": IRString(c.RequestPath),
			"winner":       IRInt(c.Winner),
			"losers":       losers,
		})
	}

	return IRObject{
		"version":     IRString(PlanVersion),
		"entity_type": IRString(p.EntityType),
		"entity_id":   IRInt(p.EntityID),
		"store_id":    IRInt(p.StoreID),
		"desired":     desired,
		"to_update":   updates,
		"to_create":   creates,
		"conflicts":   conflicts,
		"collisions":  collisions,
	}
}

// recordObject omits absent optional fields; canonical JSON has no null.
func recordObject(r RewriteRecord) IRObject {
	obj := IRObject{
		"entity_type":      IRString(r.EntityType),
		"entity_id":        IRInt(r.EntityID),
		"request_path":     IRString(r.RequestPath),
		"target_path":      IRString(r.TargetPath),
		"redirect_type":    IRInt(r.RedirectType),
		"store_id":         IRInt(r.StoreID),
		"is_autogenerated": IRBool(r.IsAutogenerated),
	}
	if r.Description != nil {
		obj["description"] = IRString(*r.Description)
	}
	if r.Metadata != nil {
		obj["metadata"] = IRString(*r.Metadata)
	}
	return obj
}
