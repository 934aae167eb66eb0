package flow

import (
	"fmt"

	"github.com/dmitrijs2005/authflow/internal/client/models"
	"github.com/dmitrijs2005/authflow/internal/client/repositories/secrets"
)

type EffectKind int

const (
	SaveSecret EffectKind = iota
	DeleteSecret
	StartSession
	EndSession
)

func (k EffectKind) String() string {
	switch k {
	case SaveSecret:
		return "save"
	case DeleteSecret:
		return "delete"
	case StartSession:
		return "startSession"
	case EndSession:
		return "endSession"
	default:
		return fmt.Sprintf("effect(%d)", int(k))
	}
}

// Effect is one side effect of a transition. Key and Value apply to the
// secret effects, Auth to StartSession.
type Effect struct {
	Kind  EffectKind
	Key   secrets.Key
	Value string
	Auth  models.AuthResponse
}

func (e Effect) String() string {
	switch e.Kind {
	case SaveSecret, DeleteSecret:
		return fmt.Sprintf("%s(%s)", e.Kind, e.Key)
	default:
		return e.Kind.String()
	}
}

// Mutations returns the secret effects as one store batch, in order.
func Mutations(effects []Effect) []secrets.Mutation {
	var muts []secrets.Mutation
	for _, e := range effects {
		switch e.Kind {
		case SaveSecret:
			muts = append(muts, secrets.Put(e.Key, e.Value))
		case DeleteSecret:
			muts = append(muts, secrets.Remove(e.Key))
		}
	}
	return muts
}

func saveSecret(key secrets.Key, value string) Effect {
	return Effect{Kind: SaveSecret, Key: key, Value: value}
}

func deleteSecret(key secrets.Key) Effect {
	return Effect{Kind: DeleteSecret, Key: key}
}

func startSession(auth models.AuthResponse) Effect {
	return Effect{Kind: StartSession, Auth: auth}
}

func endSession() Effect {
	return Effect{Kind: EndSession}
}
