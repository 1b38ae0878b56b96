package hcloud

import "context"

// MockClient is a mock implementation of InstanceClient.
type MockClient struct {
	CreateInstanceFunc    func(ctx context.Context, opts InstanceCreateOpts) (string, error)
	GetInstanceFunc       func(ctx context.Context, id string) (*Instance, error)
	DeleteInstanceFunc    func(ctx context.Context, id string) error
	ListInstancesFunc     func(ctx context.Context, labels map[string]string) ([]*Instance, error)
	GetInstanceByNameFunc func(ctx context.Context, name string) (*Instance, error)
}

func (m *MockClient) CreateInstance(ctx context.Context, opts InstanceCreateOpts) (string, error) {
	if m.CreateInstanceFunc != nil {
		return m.CreateInstanceFunc(ctx, opts)
	}
	return "", nil
}

func (m *MockClient) GetInstance(ctx context.Context, id string) (*Instance, error) {
	if m.GetInstanceFunc != nil {
		return m.GetInstanceFunc(ctx, id)
	}
	return nil, nil
}

func (m *MockClient) DeleteInstance(ctx context.Context, id string) error {
	if m.DeleteInstanceFunc != nil {
		return m.DeleteInstanceFunc(ctx, id)
	}
	return nil
}

func (m *MockClient) ListInstances(ctx context.Context, labels map[string]string) ([]*Instance, error) {
	if m.ListInstancesFunc != nil {
		return m.ListInstancesFunc(ctx, labels)
	}
	return nil, nil
}

func (m *MockClient) GetInstanceByName(ctx context.Context, name string) (*Instance, error) {
	if m.GetInstanceByNameFunc != nil {
		return m.GetInstanceByNameFunc(ctx, name)
	}
	return nil, nil
}
