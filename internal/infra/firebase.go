package infra

import (
	"context"
	"fmt"
	"sync"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/option"

	"stallsync/internal/config"
)

// Firebase bundles the process-wide Admin SDK handles. It is initialized
// exactly once and injected into collaborators; no package re-initializes
// the SDK ad hoc.
type Firebase struct {
	App       *firebase.App
	Auth      *auth.Client
	Firestore *firestore.Client
}

var (
	fbOnce sync.Once
	fbInst *Firebase
	fbErr  error
)

// InitFirebase initializes the Firebase Admin SDK, guarded so repeated calls
// return the same handle. Credentials come from the service-account JSON in
// config when set, otherwise application default credentials.
func InitFirebase(ctx context.Context, cfg *config.Config) (*Firebase, error) {
	fbOnce.Do(func() {
		var opts []option.ClientOption
		if cfg.CredentialsJSON != "" {
			opts = append(opts, option.WithCredentialsJSON([]byte(cfg.CredentialsJSON)))
		}

		app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
		if err != nil {
			fbErr = fmt.Errorf("firebase app: %w", err)
			return
		}

		authClient, err := app.Auth(ctx)
		if err != nil {
			fbErr = fmt.Errorf("firebase auth: %w", err)
			return
		}

		fsClient, err := app.Firestore(ctx)
		if err != nil {
			fbErr = fmt.Errorf("firestore client: %w", err)
			return
		}

		fbInst = &Firebase{App: app, Auth: authClient, Firestore: fsClient}
	})
	return fbInst, fbErr
}

// Close releases the Firestore connection. Safe to call once at shutdown.
func (f *Firebase) Close() error {
	if f == nil || f.Firestore == nil {
		return nil
	}
	return f.Firestore.Close()
}
