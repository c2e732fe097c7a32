// Package docker manages the local Neo4j container used as the default
// graph store target.
package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/client"
	"github.com/docker/go-connections/nat"

	"aws-graphx/internal/config"
)

// ContainerName is the fixed name of the managed Neo4j container.
const ContainerName = "aws-graphx-neo4j"

// DataDir is the host directory mounted as the Neo4j data volume.
const DataDir = "neo4j-data"

// StartContainerOptions configures StartContainer.
type StartContainerOptions struct {
	Config *config.Config
}

// StartContainer pulls the configured Neo4j image and starts a container
// with the bolt and http ports published and the data directory mounted.
// Starting while the container already exists is an error; use stop first.
func StartContainer(ctx context.Context, opts StartContainerOptions) error {
	cfg := opts.Config

	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer cli.Close()

	containers, err := cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}
	for _, c := range containers {
		for _, name := range c.Names {
			if name == "/"+ContainerName {
				return fmt.Errorf("container %s already exists, run 'aws-graphx stop' first", ContainerName)
			}
		}
	}

	fmt.Printf("Pulling image %s...\n", cfg.Neo4j.DockerImage)
	reader, err := cli.ImagePull(ctx, cfg.Neo4j.DockerImage, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", cfg.Neo4j.DockerImage, err)
	}
	// The pull is asynchronous; drain the progress stream to completion.
	if _, err := io.Copy(io.Discard, reader); err != nil {
		reader.Close()
		return fmt.Errorf("failed to pull image %s: %w", cfg.Neo4j.DockerImage, err)
	}
	reader.Close()

	dataPath, err := filepath.Abs(DataDir)
	if err != nil {
		return fmt.Errorf("failed to resolve data directory: %w", err)
	}
	if err := os.MkdirAll(dataPath, 0755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	boltPort, err := nat.NewPort("tcp", "7687")
	if err != nil {
		return err
	}
	httpPort, err := nat.NewPort("tcp", "7474")
	if err != nil {
		return err
	}

	containerCfg := &container.Config{
		Image: cfg.Neo4j.DockerImage,
		Env: []string{
			fmt.Sprintf("NEO4J_AUTH=%s/%s", cfg.Neo4j.User, cfg.Neo4j.Password),
		},
		ExposedPorts: nat.PortSet{
			boltPort: struct{}{},
			httpPort: struct{}{},
		},
	}
	hostCfg := &container.HostConfig{
		PortBindings: nat.PortMap{
			boltPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: "7687"}},
			httpPort: []nat.PortBinding{{HostIP: "127.0.0.1", HostPort: "7474"}},
		},
		Binds: []string{dataPath + ":/data"},
	}

	created, err := cli.ContainerCreate(ctx, containerCfg, hostCfg, nil, nil, ContainerName)
	if err != nil {
		return fmt.Errorf("failed to create container: %w", err)
	}
	if err := cli.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return fmt.Errorf("failed to start container: %w", err)
	}

	fmt.Printf("✓ Started Neo4j container %s\n", ContainerName)
	fmt.Printf("  Bolt: %s\n", cfg.Neo4j.URI)
	fmt.Printf("  Browser: http://localhost:7474\n")
	fmt.Printf("  Data directory: %s\n", dataPath)
	return nil
}

// StopContainer stops and removes the managed container, preserving the
// mounted data directory.
func StopContainer(ctx context.Context) error {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return fmt.Errorf("failed to create Docker client: %w", err)
	}
	defer cli.Close()

	containers, err := cli.ContainerList(ctx, container.ListOptions{All: true})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	var containerID string
	for _, c := range containers {
		for _, name := range c.Names {
			if name == "/"+ContainerName {
				containerID = c.ID
				break
			}
		}
		if containerID != "" {
			break
		}
	}
	if containerID == "" {
		return fmt.Errorf("container %s not found", ContainerName)
	}

	fmt.Printf("Stopping container %s...\n", ContainerName)
	timeout := 10 // seconds
	if err := cli.ContainerStop(ctx, containerID, container.StopOptions{Timeout: &timeout}); err != nil {
		// Container might already be stopped, try to remove anyway
		fmt.Printf("Warning: failed to stop container: %v\n", err)
	}
	if err := cli.ContainerRemove(ctx, containerID, container.RemoveOptions{Force: true}); err != nil {
		return fmt.Errorf("failed to remove container: %w", err)
	}

	fmt.Printf("✓ Container %s removed successfully\n", ContainerName)
	fmt.Printf("\nNote: Data has been preserved in the %s directory\n", DataDir)
	return nil
}
