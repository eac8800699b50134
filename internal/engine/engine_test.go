package engine_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/edb"
	"podsolve/internal/engine"
	"podsolve/internal/handlers"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/value"
)

func newDriver(t *testing.T, db *edb.EDB) *engine.Driver {
	t.Helper()
	return engine.NewDriver(db, handlers.RegisterAll(), predicate.NewRegistry(), paramsconfig.DefaultParams())
}

func TestSolve_LiteralComparisons(t *testing.T) {
	db := edb.NewBuilder().Build()
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgLit(value.Int(5)), podlang.ArgLit(value.Int(5))),
		podlang.NewTemplate(podlang.NativePred(podlang.PredLt), podlang.ArgLit(value.Int(3)), podlang.ArgLit(value.Int(10))),
	)

	answer, err := newDriver(t, db).Solve(req)
	require.NoError(t, err)
	require.Len(t, answer.Requested, 2)
	require.True(t, answer.Requested[0].Equal(podlang.NewStatement(podlang.NativePred(podlang.PredEqual), podlang.Lit(value.Int(5)), podlang.Lit(value.Int(5)))))
}

func TestSolve_ContradictionHasNoProof(t *testing.T) {
	db := edb.NewBuilder().Build()
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgLit(value.Int(5)), podlang.ArgLit(value.Int(6))),
	)

	_, err := newDriver(t, db).Solve(req)
	require.Error(t, err)
}

// TestSolve_RecursiveCustomPredicate drives a mutually-recursive custom
// predicate pair through the top-down search: reachable(a, b) holds
// either by a direct attestation or by attestation chained through
// reachableVia, which calls back into reachable. alice only attests bob,
// and bob only attests carol, so reaching carol from alice requires the
// two-hop recursive branch, not the direct one.
func TestSolve_RecursiveCustomPredicate(t *testing.T) {
	aliceHash := value.HashValues(value.String("alice"))
	bobHash := value.HashValues(value.String("bob"))
	carolHash := value.HashValues(value.String("carol"))
	aliceID := value.Raw(aliceHash)
	bobID := value.Raw(bobHash)
	carolID := value.Raw(carolHash)
	attests := value.String("attests")

	podAlice := value.PodRef{ID: value.HashValues(value.String("pod:alice-attests-bob"))}
	podBob := value.PodRef{ID: value.HashValues(value.String("pod:bob-attests-carol"))}
	db := edb.NewBuilder().
		AddStatement(podlang.NewStatement(podlang.NativePred(podlang.PredContains), podlang.Lit(aliceID), podlang.Lit(attests), podlang.Lit(bobID)), podAlice).
		AddStatement(podlang.NewStatement(podlang.NativePred(podlang.PredContains), podlang.Lit(bobID), podlang.Lit(attests), podlang.Lit(carolID)), podBob).
		Build()

	attestationPred := podlang.CustomPredicate{
		Name:          "attestation",
		Kind:          podlang.BodyAnd,
		ArgCount:      2,
		WildcardNames: []string{"from", "to"},
		Body: []podlang.StatementTemplate{
			podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgWild(0, "from"), podlang.ArgLit(attests), podlang.ArgWild(1, "to")),
		},
	}
	reachablePred := podlang.CustomPredicate{
		Name:          "reachable",
		Kind:          podlang.BodyOr,
		ArgCount:      2,
		WildcardNames: []string{"from", "to"},
		Body: []podlang.StatementTemplate{
			podlang.NewTemplate(podlang.BatchSelf(0, "attestation"), podlang.ArgWild(0, "from"), podlang.ArgWild(1, "to")),
			podlang.NewTemplate(podlang.BatchSelf(2, "reachableVia"), podlang.ArgWild(0, "from"), podlang.ArgWild(1, "to")),
		},
	}
	reachableViaPred := podlang.CustomPredicate{
		Name:          "reachableVia",
		Kind:          podlang.BodyAnd,
		ArgCount:      2,
		WildcardNames: []string{"from", "to", "mid"},
		Body: []podlang.StatementTemplate{
			podlang.NewTemplate(podlang.BatchSelf(1, "reachable"), podlang.ArgWild(0, "from"), podlang.ArgWild(2, "mid")),
			podlang.NewTemplate(podlang.BatchSelf(0, "attestation"), podlang.ArgWild(2, "mid"), podlang.ArgWild(1, "to")),
		},
	}
	batch := podlang.NewCustomPredicateBatch([]podlang.CustomPredicate{attestationPred, reachablePred, reachableViaPred})

	predicates := predicate.NewRegistry()
	require.NoError(t, predicates.Register(batch))

	driver := engine.NewDriver(db, handlers.RegisterAll(), predicates, paramsconfig.DefaultParams())
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.CustomPred(batch.Ref(1)), podlang.ArgLit(aliceID), podlang.ArgLit(carolID)),
	)

	answer, err := driver.Solve(req)
	require.NoError(t, err)
	require.Len(t, answer.Requested, 1)
	require.True(t, answer.Requested[0].Equal(podlang.NewStatement(podlang.CustomPred(batch.Ref(1)), podlang.Lit(aliceID), podlang.Lit(carolID))))
}

// TestSolve_PublishVerified drives a six-conjunct custom predicate
// across two signed dictionaries: an identity document signed by an
// issuer key (carrying a username and the holder's public key) and a
// publish-request document signed by that holder key (carrying a
// request_type and a data payload). Grounded on
// original_source/core/models/src/mainpod/publish.rs's identity +
// document signing chain (spec.md's S3 scenario).
func TestSolve_PublishVerified(t *testing.T) {
	issuer := value.NewKeypair(value.HashValues(value.String("issuer-secret")))
	user := value.NewKeypair(value.HashValues(value.String("user-secret")))

	idDict := value.NewDictionary(3, map[string]value.Value{
		"username":        value.String("alice"),
		"user_public_key": value.PublicKeyValue(user.Public),
	})
	idSigned := &value.SignedDictionary{Dict: idDict, Signer: issuer.Public, Signature: issuer.Sign(idDict.Commitment())}

	docDict := value.NewDictionary(3, map[string]value.Value{
		"request_type": value.String("publish"),
		"data":         value.String("hello world"),
	})
	docSigned := &value.SignedDictionary{Dict: docDict, Signer: user.Public, Signature: user.Sign(docDict.Commitment())}

	db := edb.NewBuilder().AddSignedDict(idSigned).AddSignedDict(docSigned).Build()

	publishVerifiedPred := podlang.CustomPredicate{
		Name:          "publishVerified",
		Kind:          podlang.BodyAnd,
		ArgCount:      3,
		WildcardNames: []string{"u", "d", "isk", "idRoot", "userPk", "docRoot"},
		Body: []podlang.StatementTemplate{
			podlang.NewTemplate(podlang.NativePred(podlang.PredSignedBy), podlang.ArgWild(3, "idRoot"), podlang.ArgWild(2, "isk")),
			podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgWild(3, "idRoot"), podlang.ArgLit(value.String("username")), podlang.ArgWild(0, "u")),
			podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgWild(3, "idRoot"), podlang.ArgLit(value.String("user_public_key")), podlang.ArgWild(4, "userPk")),
			podlang.NewTemplate(podlang.NativePred(podlang.PredSignedBy), podlang.ArgWild(5, "docRoot"), podlang.ArgWild(4, "userPk")),
			podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgWild(5, "docRoot"), podlang.ArgLit(value.String("request_type")), podlang.ArgLit(value.String("publish"))),
			podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgWild(5, "docRoot"), podlang.ArgLit(value.String("data")), podlang.ArgWild(1, "d")),
		},
	}
	batch := podlang.NewCustomPredicateBatch([]podlang.CustomPredicate{publishVerifiedPred})

	predicates := predicate.NewRegistry()
	require.NoError(t, predicates.Register(batch))

	driver := engine.NewDriver(db, handlers.RegisterAll(), predicates, paramsconfig.DefaultParams())
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.CustomPred(batch.Ref(0)), podlang.ArgWild(0, "u"), podlang.ArgWild(1, "d"), podlang.ArgLit(value.PublicKeyValue(issuer.Public))),
	)

	answer, err := driver.Solve(req)
	require.NoError(t, err)
	require.Len(t, answer.Requested, 1)

	u, ok := answer.Store.Bindings[0]
	require.True(t, ok)
	username, ok := u.String2()
	require.True(t, ok)
	require.Equal(t, "alice", username)

	d, ok := answer.Store.Bindings[1]
	require.True(t, ok)
	data, ok := d.String2()
	require.True(t, ok)
	require.Equal(t, "hello world", data)
}

func TestSolve_ContainsCopyFromEDB(t *testing.T) {
	pod := value.PodRef{ID: value.HashValues(value.String("pod:alice"))}
	root := value.HashValues(value.String("dict:alice"))
	key := value.String("amount")
	stmt := podlang.NewStatement(podlang.NativePred(podlang.PredContains), podlang.Lit(value.Raw(root)), podlang.Lit(key), podlang.Lit(value.Int(42)))
	db := edb.NewBuilder().AddStatement(stmt, pod).Build()

	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgLit(value.Raw(root)), podlang.ArgLit(key), podlang.ArgWild(0, "v")),
	)

	answer, err := newDriver(t, db).Solve(req)
	require.NoError(t, err)
	require.Len(t, answer.Requested, 1)
	v, ok := answer.Store.Bindings[0]
	require.True(t, ok)
	n, ok := v.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 42, n)
}
