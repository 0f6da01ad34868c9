package service_test

import (
	"testing"

	"github.com/aula-labs/tutorbot/internal/llm"
	"github.com/aula-labs/tutorbot/internal/service"
)

func TestApologyIsTotalOverKinds(t *testing.T) {
	kinds := []llm.Kind{
		llm.KindUnknown,
		llm.KindAuth,
		llm.KindNotFound,
		llm.KindRateLimit,
		llm.KindTransient,
	}
	for _, kind := range kinds {
		if service.Apology(kind) == "" {
			t.Errorf("Apology(%s) returned empty string", kind)
		}
	}
}

func TestApologyNotFoundIsDistinct(t *testing.T) {
	notFound := service.Apology(llm.KindNotFound)
	generic := service.Apology(llm.KindUnknown)
	if notFound == generic {
		t.Fatal("missing-document failures need their own message")
	}
	if service.Apology(llm.KindRateLimit) != generic {
		t.Error("rate-limit failures should use the generic apology")
	}
	if service.Apology(llm.KindAuth) != generic {
		t.Error("auth failures should use the generic apology")
	}
}
