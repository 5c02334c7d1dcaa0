package prepare

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/timecamphq/peoplesync/internal/config"
	"github.com/timecamphq/peoplesync/internal/models"
)

func supervisorScenario() []models.Person {
	return []models.Person{
		{ExternalID: "1", Name: "Alice", Email: "alice@x.com", Status: "active", IsSupervisor: true},
		{ExternalID: "2", Name: "Bob", Email: "bob@x.com", Status: "active", SupervisorID: "1", IsSupervisor: true},
		{ExternalID: "3", Name: "Carol", Email: "carol@x.com", Status: "active", SupervisorID: "2"},
		{ExternalID: "4", Name: "Dan", Email: "dan@x.com", Status: "active", SupervisorID: "1"},
		{ExternalID: "5", Name: "Eve", Email: "eve@x.com", Status: "active"},
	}
}

func pathsFor(t *testing.T, cfg config.TimeCamp, persons []models.Person) map[string]string {
	t.Helper()

	dir := newDirectory(cfg, persons)
	strategy := newPathStrategy(cfg, dir)

	paths := map[string]string{}
	for i := range persons {
		paths[persons[i].ExternalID] = strategy.groupPath(&persons[i])
	}
	return paths
}

func TestSupervisorOnlyPaths(t *testing.T) {
	cfg := config.TimeCamp{UseSupervisorGroups: true}

	paths := pathsFor(t, cfg, supervisorScenario())

	require.Equal(t, "Alice", paths["1"])
	require.Equal(t, "Alice/Bob", paths["2"])
	require.Equal(t, "Alice/Bob", paths["3"])
	require.Equal(t, "Alice", paths["4"])
	require.Equal(t, "", paths["5"])
}

func TestSupervisorPathsWithJobTitles(t *testing.T) {
	cfg := config.TimeCamp{UseSupervisorGroups: true, UseJobTitleNameGroups: true}

	persons := supervisorScenario()
	persons[0].JobTitle = "CEO"
	persons[1].JobTitle = "CTO"

	paths := pathsFor(t, cfg, persons)

	require.Equal(t, "CEO [Alice]", paths["1"])
	require.Equal(t, "CEO [Alice]/CTO [Bob]", paths["2"])
	require.Equal(t, "CEO [Alice]/CTO [Bob]", paths["3"])
}

func TestSupervisorCycleTerminates(t *testing.T) {
	cfg := config.TimeCamp{UseSupervisorGroups: true}

	persons := []models.Person{
		{ExternalID: "1", Name: "Alice", Email: "a@x.com", Status: "active", SupervisorID: "2", IsSupervisor: true},
		{ExternalID: "2", Name: "Bob", Email: "b@x.com", Status: "active", SupervisorID: "1", IsSupervisor: true},
		{ExternalID: "3", Name: "Carol", Email: "c@x.com", Status: "active", SupervisorID: "1"},
	}

	paths := pathsFor(t, cfg, persons)

	// The walk terminates and no path repeats a segment.
	for id, path := range paths {
		seen := map[string]bool{}
		for _, segment := range strings.Split(path, "/") {
			if segment == "" {
				continue
			}
			require.False(t, seen[segment], "repeated segment %q in path for %s", segment, id)
			seen[segment] = true
		}
	}
	require.Equal(t, "Bob/Alice", paths["1"])
	require.Equal(t, "Alice/Bob", paths["2"])
	require.Equal(t, paths["1"], paths["3"])
}

func TestDanglingSupervisorMeansNoSupervisor(t *testing.T) {
	cfg := config.TimeCamp{UseSupervisorGroups: true}

	persons := []models.Person{
		{ExternalID: "1", Name: "Alice", Email: "a@x.com", Status: "active", SupervisorID: "404"},
	}

	paths := pathsFor(t, cfg, persons)
	require.Equal(t, "", paths["1"])
}

func TestDepartmentOnlyPaths(t *testing.T) {
	cfg := config.TimeCamp{UseDepartmentGroups: true, SkipDepartments: "Company"}

	persons := []models.Person{
		{ExternalID: "1", Name: "Alice", Email: "a@x.com", Status: "active", Department: "Company/R&D / Security"},
		{ExternalID: "2", Name: "Bob", Email: "b@x.com", Status: "active"},
	}

	paths := pathsFor(t, cfg, persons)
	require.Equal(t, "R&D/Security", paths["1"])
	require.Equal(t, "", paths["2"])
}

func TestHybridPaths(t *testing.T) {
	cfg := config.TimeCamp{UseDepartmentGroups: true, UseSupervisorGroups: true}

	persons := []models.Person{
		{ExternalID: "1", Name: "Alice", Email: "a@x.com", Status: "active", Department: "Engineering", IsSupervisor: true},
		{ExternalID: "2", Name: "Bob", Email: "b@x.com", Status: "active", Department: "Engineering/Frontend", SupervisorID: "1"},
		{ExternalID: "3", Name: "Carol", Email: "c@x.com", Status: "active", Department: "Sales"},
		{ExternalID: "4", Name: "Dan", Email: "d@x.com", Status: "active", SupervisorID: "1"},
	}

	paths := pathsFor(t, cfg, persons)

	// Supervisors anchor their own subgroup beneath their department;
	// reports land in their supervisor's segment beneath their own
	// department.
	require.Equal(t, "Engineering/Alice", paths["1"])
	require.Equal(t, "Engineering/Frontend/Alice", paths["2"])
	require.Equal(t, "Sales", paths["3"])
	// No department falls back to the supervisor-only derivation.
	require.Equal(t, "Alice", paths["4"])
}

func TestFlatPaths(t *testing.T) {
	cfg := config.TimeCamp{}

	persons := supervisorScenario()
	persons[0].Department = "Engineering"

	paths := pathsFor(t, cfg, persons)
	for id, path := range paths {
		require.Equal(t, "", path, "person %s", id)
	}
}
