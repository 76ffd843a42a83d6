// Package mocks provides gomock implementations of the portal's ports.
//
// To regenerate mocks after interface changes, run:
//
//	go generate ./internal/mocks
//
// Usage in tests:
//
//	ctrl := gomock.NewController(t)
//	backend := mocks.NewMockIdentityBackend(ctrl)
//	backend.EXPECT().Login(gomock.Any(), gomock.Any()).Return(result, nil)
package mocks

//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=identity_backend_mock.go github.com/smartbin/portal/internal/ports IdentityBackend
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=session_store_mock.go github.com/smartbin/portal/internal/ports SessionStore
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=user_directory_mock.go github.com/smartbin/portal/internal/ports UserDirectory
//go:generate go run go.uber.org/mock/mockgen -package=mocks -destination=token_codec_mock.go github.com/smartbin/portal/internal/ports TokenCodec
